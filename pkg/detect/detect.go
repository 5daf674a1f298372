// Package detect identifies the issuing bank of a statement from its text.
//
// Scoring is a fixed rule over the signature table: every keyword found
// (case-sensitive substring) adds KeywordWeight, every pattern matched
// (case-insensitive regexp) adds PatternWeight. The strictly highest total
// wins, earlier registrations win ties, and a best score of zero is Unknown.
package detect

import (
	"strings"
)

const (
	KeywordWeight = 1
	PatternWeight = 2
)

// Unknown is returned when no signature matched.
const Unknown = ""

// Score is one bank's result for a piece of text.
type Score struct {
	Bank     string `json:"bank"`
	Keywords int    `json:"keywords"`
	Patterns int    `json:"patterns"`
	Total    int    `json:"total"`
}

// Detector scores text against a registry.
type Detector struct {
	registry *Registry
}

// New returns a detector over r; a nil registry means the built-in table.
func New(r *Registry) *Detector {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Detector{registry: r}
}

// Registry returns the table the detector scores against.
func (d *Detector) Registry() *Registry {
	return d.registry
}

// Detect returns the best matching bank identifier, or Unknown.
func (d *Detector) Detect(text string) string {
	bank, _ := d.Best(text)
	return bank
}

// Best returns the winning bank and its score.
func (d *Detector) Best(text string) (string, int) {
	best, top := Unknown, 0
	for _, s := range d.Scores(text) {
		if s.Total > top {
			best, top = s.Bank, s.Total
		}
	}
	return best, top
}

// Scores returns the breakdown for every registered bank, in registry order.
func (d *Detector) Scores(text string) []Score {
	scores := make([]Score, len(d.registry.entries))
	for i, e := range d.registry.entries {
		scores[i].Bank = e.bank
		if text == "" {
			continue
		}
		for _, kw := range e.keywords {
			if kw != "" && strings.Contains(text, kw) {
				scores[i].Keywords++
			}
		}
		for _, re := range e.patterns {
			if re.MatchString(text) {
				scores[i].Patterns++
			}
		}
		scores[i].Total = scores[i].Keywords*KeywordWeight + scores[i].Patterns*PatternWeight
	}
	return scores
}

// Detect scores text against the built-in table.
func Detect(text string) string {
	return New(nil).Detect(text)
}
