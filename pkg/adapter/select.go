package adapter

import (
	"sort"
	"strings"

	"github.com/voidshard/tallyman/pkg/domain"
)

type constructor func(*domain.Table, Options) Adapter

// dialects is the closed table of banks with a dedicated adapter.
// A new dialect is one entry here plus its adapter.
var dialects = map[string]constructor{
	"SBI": func(t *domain.Table, o Options) Adapter { return NewSBI(t, o) },
}

// For returns the adapter for a detected bank identifier. Unknown and empty
// identifiers get the Standard adapter.
func For(bank string, table *domain.Table, opts Options) Adapter {
	if c, ok := dialects[strings.ToUpper(strings.TrimSpace(bank))]; ok {
		return c(table, opts)
	}
	return NewStandard(table, opts)
}

// Dialects lists the identifiers with a dedicated adapter.
func Dialects() []string {
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
