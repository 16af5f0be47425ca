package corpusio

import (
	"bufio"
	"io"
	"strings"
)

// ReadStopwords reads one word per line from r and returns the set.
// Blank lines are skipped; nothing here is malformed enough to warn
// about.
func ReadStopwords(r io.Reader) (map[string]bool, error) {
	out := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		out[word] = true
	}
	return out, scanner.Err()
}
