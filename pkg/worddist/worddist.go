// Package worddist implements the per-article and per-region word
// distribution model: a multinomial over a vocabulary with a
// Good-Turing-style discount reserved for unseen words, plus the
// KL-divergence scorers used to rank regions against a query
// distribution.
package worddist

import (
	"errors"
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// epsilon is the smallest probability ever returned by LookupWord, so
// callers can always take a log.
const epsilon = 1e-12

// foldCase is the Unicode-aware lowercaser applied to every word when
// a distribution is not configured to preserve case
// preserve_case_words). golang.org/x/text/cases.Lower is used instead
// of strings.ToLower so multi-byte scripts fold correctly.
var foldCase = cases.Lower(language.Und)

// Fold normalizes a word according to the preserve_case_words policy.
func Fold(word string, preserveCase bool) string {
	if preserveCase {
		return word
	}
	return foldCase.String(word)
}

// ErrFinished is returned by mutating operations on a distribution
// that has already been finished.
var ErrFinished = errors.New("worddist: distribution already finished")

// ErrAlreadyFinished is returned by Finish when called twice.
var ErrAlreadyFinished = errors.New("worddist: already finished")

// WordDist is a multinomial distribution over a vocabulary, with a
// Good-Turing-style discount reserved for words unseen in this
// distribution specifically (UnseenMass) and a second discount
// inherited from the corpus-wide global distribution
// (OverallUnseenMass), which is recorded but not used by LookupWord: a
// word absent from both this and the global vocabulary gets epsilon.
//
// Counts are mutable via AddWord/AddWordDistribution until Finish is
// called, after which the distribution is immutable.
type WordDist struct {
	counts      map[string]int
	totalTokens int

	unseenMass        float64
	overallUnseenMass float64
	finished          bool

	// global is the corpus-wide distribution this one was finished
	// against; nil for the global distribution itself.
	global *WordDist
}

// New creates an empty, open WordDist.
func New() *WordDist {
	return &WordDist{counts: make(map[string]int)}
}

// AddWord adds count occurrences of word. Only legal before Finish.
func (d *WordDist) AddWord(word string, count int) error {
	if d.finished {
		return ErrFinished
	}
	d.counts[word] += count
	d.totalTokens += count
	return nil
}

// AddWordDistribution sums other's counts into d. Only legal before
// Finish on d (other may be finished or not: only its counts are
// read).
func (d *WordDist) AddWordDistribution(other *WordDist) error {
	if d.finished {
		return ErrFinished
	}
	for w, c := range other.counts {
		d.counts[w] += c
	}
	d.totalTokens += other.totalTokens
	return nil
}

// Finish freezes the distribution's counts and computes UnseenMass via
// a Good-Turing proxy: the fraction of total tokens contributed by
// words seen exactly once (hapax legomena). global is the corpus-wide
// distribution to inherit OverallUnseenMass from; it must already be
// finished, except when d IS the global distribution, in which case
// pass nil and OverallUnseenMass equals UnseenMass.
func (d *WordDist) Finish(global *WordDist) error {
	if d.finished {
		return ErrAlreadyFinished
	}

	if d.totalTokens == 0 {
		d.unseenMass = 1.0
	} else {
		hapaxTokens := 0
		for _, c := range d.counts {
			if c == 1 {
				hapaxTokens++
			}
		}
		d.unseenMass = float64(hapaxTokens) / float64(d.totalTokens)
	}

	if global == nil {
		d.overallUnseenMass = d.unseenMass
	} else {
		d.overallUnseenMass = global.unseenMass
	}

	d.global = global
	d.finished = true
	return nil
}

// Finished reports whether Finish has been called.
func (d *WordDist) Finished() bool { return d.finished }

// TotalTokens returns the total token count seen (pre-discount).
func (d *WordDist) TotalTokens() int { return d.totalTokens }

// UnseenMass returns the probability mass reserved for words unseen in
// this distribution specifically.
func (d *WordDist) UnseenMass() float64 { return d.unseenMass }

// OverallUnseenMass returns the unseen-mass figure inherited from the
// corpus-wide global distribution at Finish time.
func (d *WordDist) OverallUnseenMass() float64 { return d.overallUnseenMass }

// Count returns the raw count of word, 0 if unseen.
func (d *WordDist) Count(word string) int { return d.counts[word] }

// Words returns the distinct words with nonzero count.
func (d *WordDist) Words() []string {
	out := make([]string, 0, len(d.counts))
	for w := range d.counts {
		out = append(out, w)
	}
	return out
}

// probSeen returns (count/total)*(1-unseenMass) for a word known to be
// present in d.counts with count > 0.
func (d *WordDist) probSeen(count int) float64 {
	return (float64(count) / float64(d.totalTokens)) * (1 - d.unseenMass)
}

// LookupWord returns the smoothed probability of w under this
// distribution. Seen words: (count/total)*(1-unseen_mass). Unseen
// words: unseen_mass * p_global(w), recursing into the global
// distribution's own LookupWord. Never returns exactly 0: if both
// paths bottom out at zero, epsilon is returned so callers can always
// take a log.
func (d *WordDist) LookupWord(w string) float64 {
	if c, ok := d.counts[w]; ok && c > 0 {
		return d.probSeen(c)
	}

	var pGlobal float64
	if d.global != nil {
		pGlobal = d.global.LookupWord(w)
	}

	p := d.unseenMass * pGlobal
	if p <= 0 {
		return epsilon
	}
	return p
}
