package corpusio

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"geotagger/internal/logging"
	"geotagger/pkg/article"
	"geotagger/pkg/worddist"
)

var wordCountLineRe = regexp.MustCompile(`^(.*) = ([0-9]+)$`)

var lowerCaser = cases.Lower(language.Und)

// WordCountsOptions controls how a word-counts file is folded into
// per-article word distributions.
type WordCountsOptions struct {
	PreserveCaseWords             bool
	IgnoreStopwordsInArticleDists bool
	IsStopword                    func(string) bool
}

// ReadWordCounts reads the "Article title: / Article ID: / Article
// coordinates: / word = count" block format from r, building each
// referenced article's Dist (left unfinished for the caller's later
// Table.FinishDistributions pass). A block referencing a title not
// present in tbl is discarded with a warning (an unknown article title
// reference); malformed count lines are warned and skipped.
func ReadWordCounts(r io.Reader, tbl *article.Table, opts WordCountsOptions, report *logging.LoadReport) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var title string
	var counts map[string]int
	lineNo := 0

	flush := func() {
		if title == "" || len(counts) == 0 {
			return
		}
		finishBlock(tbl, title, counts, report, lineNo)
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "Article title: "):
			flush()
			title = strings.TrimPrefix(line, "Article title: ")
			counts = make(map[string]int)
		case strings.HasPrefix(line, "Article coordinates: "), strings.HasPrefix(line, "Article ID: "):
			// Redundant with the article-data file; not parsed here.
		case strings.TrimSpace(line) == "":
			// blank separator lines are tolerated between blocks
		default:
			m := wordCountLineRe.FindStringSubmatch(line)
			if m == nil {
				report.Warn(logging.LoadWarning{Source: "word-counts", Line: lineNo, Detail: fmt.Sprintf("unparseable line: %q", line)})
				continue
			}
			word := m[1]
			if !opts.PreserveCaseWords {
				word = lowerCaser.String(word)
			}
			if opts.IgnoreStopwordsInArticleDists && opts.IsStopword != nil && opts.IsStopword(word) {
				continue
			}
			count, err := strconv.Atoi(m[2])
			if err != nil {
				report.Warn(logging.LoadWarning{Source: "word-counts", Line: lineNo, Detail: fmt.Sprintf("bad count in line %q", line)})
				continue
			}
			counts[word] += count
		}
	}
	flush()

	return scanner.Err()
}

func finishBlock(tbl *article.Table, title string, counts map[string]int, report *logging.LoadReport, lineNo int) {
	a, ok := tbl.Lookup(title)
	if !ok {
		report.Warn(logging.LoadWarning{Source: "word-counts", Line: lineNo, Detail: fmt.Sprintf("unknown article title %q, discarding counts block", title)})
		return
	}

	dist := worddist.New()
	for word, count := range counts {
		if err := dist.AddWord(word, count); err != nil {
			report.Warn(logging.LoadWarning{Source: "word-counts", Line: lineNo, Detail: fmt.Sprintf("article %q: %v", title, err)})
			return
		}
	}
	a.Dist = dist
}
