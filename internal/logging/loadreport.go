package logging

import (
	"log/slog"
	"sync"
)

// LoadWarning is one recoverable corpus-load problem: a malformed
// line, an unknown article title referenced by a word-counts block, or
// any other skip-and-continue condition a corpusio reader encounters.
type LoadWarning struct {
	Source string // e.g. "article-data", "word-counts", "gazetteer"
	Line   int
	Detail string
}

// LoadReport accumulates LoadWarnings across a corpus load so a caller
// can both log each one as it happens and inspect the full tally
// afterward, without a malformed record ever aborting the load.
type LoadReport struct {
	mu       sync.Mutex
	warnings []LoadWarning
}

// NewLoadReport returns an empty LoadReport.
func NewLoadReport() *LoadReport {
	return &LoadReport{}
}

// Warn records w and logs it at WARN level.
func (r *LoadReport) Warn(w LoadWarning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()

	slog.Warn("recoverable load error", "source", w.Source, "line", w.Line, "detail", w.Detail)
}

// Warnings returns every warning recorded so far, in order.
func (r *LoadReport) Warnings() []LoadWarning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LoadWarning(nil), r.warnings...)
}

// Count returns the number of warnings recorded so far.
func (r *LoadReport) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}
