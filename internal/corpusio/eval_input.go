package corpusio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jdkato/prose/tokenize"

	"geotagger/internal/logging"
	"geotagger/pkg/article"
	"geotagger/pkg/evaluator"
	"geotagger/pkg/geo"
)

// ReadTRConllDocument reads one TR-CONLL (.tr) evaluation file from r
// as a single Document. A line is either a word token ("word\t<tags>",
// where a tag column beginning with "LOC" marks the token as a
// toponym mention) or, inside a toponym's candidate block, a gazetteer
// candidate line ("\t>c<n>\tgaz\tlat\tlong\ttopolist"). Only the
// candidate line marked with a leading ">" carries the gold coordinate
// -- the others are alternate candidates the original reader never
// actually consulted, so this reader skips them too.
func ReadTRConllDocument(r io.Reader, name string, report *logging.LoadReport) (evaluator.Document, error) {
	doc := evaluator.Document{Name: name}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending *evaluator.Word
	lineNo := 0

	flush := func() {
		if pending != nil {
			doc.Words = append(doc.Words, *pending)
			pending = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		word, rest, hasTab := strings.Cut(line, "\t")
		switch {
		case word != "":
			flush()
			w := evaluator.Word{Text: word}
			if strings.HasPrefix(rest, "LOC") {
				w.IsToponym = true
				pending = &w
			} else {
				doc.Words = append(doc.Words, w)
			}
		case hasTab && pending != nil && strings.HasPrefix(rest, ">"):
			coord, err := parseTRConllCandidate(rest)
			if err != nil {
				report.Warn(logging.LoadWarning{Source: "tr-conll", Line: lineNo, Detail: err.Error()})
				continue
			}
			pending.Coord = &coord
		}
	}
	flush()

	return doc, scanner.Err()
}

func parseTRConllCandidate(rest string) (geo.Coord, error) {
	fields := strings.SplitN(rest, "\t", 5)
	if len(fields) < 4 {
		return geo.Coord{}, fmt.Errorf("candidate line has %d fields, want >= 4", len(fields))
	}
	lat, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("bad candidate lat %q: %w", fields[2], err)
	}
	long, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return geo.Coord{}, fmt.Errorf("bad candidate long %q: %w", fields[3], err)
	}
	return geo.Coord{Lat: lat, Long: long}, nil
}

// ReadEncyclopediaDocuments reads "Article title: T" / "Link:
// target|surface" style evaluation input from r, tokenizing every
// plain-text line with tokenize.TextToWords and resolving each Link's
// true coordinate against tbl. One Document is produced per "Article
// title:" block.
func ReadEncyclopediaDocuments(r io.Reader, tbl *article.Table, report *logging.LoadReport) ([]evaluator.Document, error) {
	var docs []evaluator.Document
	var current *evaluator.Document

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "Article title: "):
			if current != nil {
				docs = append(docs, *current)
			}
			current = &evaluator.Document{Name: strings.TrimPrefix(line, "Article title: ")}
		case strings.HasPrefix(line, "Link: "):
			if current == nil {
				report.Warn(logging.LoadWarning{Source: "encyclopedia-eval", Line: lineNo, Detail: "Link: line before any Article title:"})
				continue
			}
			target, surface, _ := strings.Cut(strings.TrimPrefix(line, "Link: "), "|")
			linkWord := target
			if surface != "" {
				linkWord = surface
			}
			w := evaluator.Word{Text: linkWord, IsToponym: true}
			if a, ok := tbl.Lookup(target); ok && a.Coord != nil {
				w.Coord = a.Coord
			}
			current.Words = append(current.Words, w)
		default:
			if current == nil {
				continue
			}
			for _, tok := range tokenize.TextToWords(line) {
				current.Words = append(current.Words, evaluator.Word{Text: tok})
			}
		}
	}
	if current != nil {
		docs = append(docs, *current)
	}

	return docs, scanner.Err()
}
