// Package corpusio implements the line-oriented readers for every
// input format the resolver consumes: article-data, word-counts,
// gazetteer, stopword, and evaluation-input files, using
// bufio.Scanner and tab-split parsing tolerant of short/malformed
// lines. Every reader reports a malformed line as a warning and
// continues, never aborting a load over one bad record.
package corpusio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"geotagger/internal/logging"
	"geotagger/pkg/article"
	"geotagger/pkg/geo"
)

// articleDataColumns is the expected tab-separated column order of an
// article-data file, led by a header line naming them. The format
// itself is not specified further than "title, id, namespace, redirect
// target, split, (lat, long) or none, incoming_links", so this reader
// fixes a concrete tab-separated layout consistent with that list.
var articleDataColumns = []string{"id", "title", "namespace", "redirect", "split", "coord", "incoming_links"}

// ReadArticleData reads an article-data file from r, adding every
// non-redirect Main-namespace record to tbl via AddArticle (there is no
// per-record callback) and queuing every redirect
// record onto tbl via AddRedirect for FinishLoad to flatten later. The
// first line is expected to be the header; it is validated but not
// otherwise used.
func ReadArticleData(r io.Reader, tbl *article.Table, report *logging.LoadReport) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	if scanner.Scan() {
		lineNo++
		header := strings.Split(scanner.Text(), "\t")
		if len(header) != len(articleDataColumns) {
			return fmt.Errorf("article-data: header has %d columns, want %d", len(header), len(articleDataColumns))
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(articleDataColumns) {
			report.Warn(logging.LoadWarning{Source: "article-data", Line: lineNo, Detail: fmt.Sprintf("expected %d tab-separated fields, got %d", len(articleDataColumns), len(fields))})
			continue
		}

		a, redirectTo, err := parseArticleRecord(fields)
		if err != nil {
			report.Warn(logging.LoadWarning{Source: "article-data", Line: lineNo, Detail: err.Error()})
			continue
		}
		if a.Namespace != "Main" {
			continue
		}
		if redirectTo != "" {
			tbl.AddRedirect(a.Title, redirectTo)
			continue
		}
		tbl.AddArticle(a)
	}
	return scanner.Err()
}

func parseArticleRecord(fields []string) (*article.Article, string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("bad id %q: %w", fields[0], err)
	}

	a := &article.Article{
		ID:        id,
		Title:     fields[1],
		Namespace: fields[2],
	}

	redirect := strings.TrimSpace(fields[3])
	if redirect != "" {
		a.Title = fields[1]
		return a, redirect, nil
	}

	a.Split = parseSplit(strings.TrimSpace(fields[4]))

	if coordStr := strings.TrimSpace(fields[5]); coordStr != "" {
		lat, long, err := parseCoord(coordStr)
		if err != nil {
			return nil, "", fmt.Errorf("bad coord %q: %w", coordStr, err)
		}
		a.Coord = &geo.Coord{Lat: lat, Long: long}
	}

	if linksStr := strings.TrimSpace(fields[6]); linksStr != "" {
		links, err := strconv.Atoi(linksStr)
		if err != nil {
			return nil, "", fmt.Errorf("bad incoming_links %q: %w", linksStr, err)
		}
		a.IncomingLinks = &links
	}

	return a, "", nil
}

func parseSplit(s string) article.Split {
	switch s {
	case "training":
		return article.SplitTraining
	case "dev":
		return article.SplitDev
	case "test":
		return article.SplitTest
	default:
		return article.SplitNone
	}
}

func parseCoord(s string) (lat, long float64, err error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lat,long")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	long, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, long, nil
}
