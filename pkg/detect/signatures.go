package detect

import (
	"fmt"
	"regexp"
	"sync"
)

// Signature describes how a bank identifies itself in statement text.
type Signature struct {
	Bank     string   `yaml:"bank" json:"bank"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// builtin is the default signature table, in registration order.
var builtin = []Signature{
	{
		Bank:     "HDFC",
		Keywords: []string{"HDFC BANK", "HDFC Bank", "hdfc bank"},
		Patterns: []string{`HDFC\s*BANK`, `www\.hdfcbank\.com`},
	},
	{
		Bank:     "SBI",
		Keywords: []string{"STATE BANK OF INDIA", "SBI", "sbi", "State Bank of India"},
		Patterns: []string{`State\s*Bank\s*of\s*India`, `www\.sbi\.co\.in`},
	},
	{
		Bank:     "ICICI",
		Keywords: []string{"ICICI BANK", "ICICI Bank", "icici bank"},
		Patterns: []string{`ICICI\s*Bank`, `www\.icicibank\.com`},
	},
	{
		Bank:     "AXIS",
		Keywords: []string{"AXIS BANK", "Axis Bank", "axis bank"},
		Patterns: []string{`AXIS\s*BANK`, `www\.axisbank\.com`},
	},
	{
		Bank:     "KOTAK",
		Keywords: []string{"KOTAK MAHINDRA BANK", "Kotak Mahindra Bank", "kotak"},
		Patterns: []string{`Kotak\s*Mahindra\s*Bank`, `www\.kotak\.com`},
	},
	{
		Bank:     "PNB",
		Keywords: []string{"PUNJAB NATIONAL BANK", "Punjab National Bank", "PNB"},
		Patterns: []string{`Punjab\s*National\s*Bank`, `www\.pnbindia\.in`, `pnbindia`},
	},
	{
		Bank:     "BOB",
		Keywords: []string{"BANK OF BARODA", "Bank of Baroda", "BOB"},
		Patterns: []string{`Bank\s*of\s*Baroda`, `www\.bankofbaroda\.in`},
	},
	{
		Bank:     "CANARA",
		Keywords: []string{"CANARA BANK", "Canara Bank"},
		Patterns: []string{`Canara\s*Bank`, `www\.canarabank\.com`},
	},
	{
		Bank:     "UNION",
		Keywords: []string{"UNION BANK OF INDIA", "Union Bank of India"},
		Patterns: []string{`Union\s*Bank\s*of\s*India`, `www\.unionbankofindia\.co\.in`},
	},
	{
		Bank:     "INDUSIND",
		Keywords: []string{"INDUSIND BANK", "IndusInd Bank"},
		Patterns: []string{`IndusInd\s*Bank`, `www\.indusind\.com`},
	},
}

type compiled struct {
	bank     string
	keywords []string
	patterns []*regexp.Regexp
}

// Registry is an ordered, compiled signature table. It is never modified after
// NewRegistry returns, so one instance can be shared freely.
type Registry struct {
	entries []compiled
}

// NewRegistry compiles the signatures in the order given. Earlier entries win
// score ties. A bank listed twice is rejected.
func NewRegistry(sigs ...Signature) (*Registry, error) {
	r := &Registry{entries: make([]compiled, 0, len(sigs))}
	seen := map[string]bool{}

	for _, s := range sigs {
		if s.Bank == "" {
			return nil, fmt.Errorf("signature without bank identifier")
		}
		if seen[s.Bank] {
			return nil, fmt.Errorf("duplicate signature for bank %s", s.Bank)
		}
		seen[s.Bank] = true

		c := compiled{
			bank:     s.Bank,
			keywords: append([]string(nil), s.Keywords...),
		}
		for _, p := range s.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("bank %s: pattern %q: %w", s.Bank, p, err)
			}
			c.patterns = append(c.patterns, re)
		}
		r.entries = append(r.entries, c)
	}

	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the built-in signature table.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtin...)
		if err != nil {
			panic(err) // the builtin table is static
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Builtin returns a copy of the built-in signatures, for callers that extend them.
func Builtin() []Signature {
	out := make([]Signature, len(builtin))
	copy(out, builtin)
	return out
}

// Banks lists the registered identifiers in registration order.
func (r *Registry) Banks() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.bank
	}
	return out
}
