package corpusio

import (
	"bufio"
	"io"

	"geotagger/internal/logging"
	"geotagger/pkg/gazetteer"
)

// ReadGazetteer feeds every line of r to g.LoadLine, warning and
// skipping any line LoadLine rejects (a malformed record) rather than
// aborting the load.
func ReadGazetteer(r io.Reader, g *gazetteer.Gazetteer, report *logging.LoadReport) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := g.LoadLine(line); err != nil {
			report.Warn(logging.LoadWarning{Source: "gazetteer", Line: lineNo, Detail: err.Error()})
		}
	}
	return scanner.Err()
}
