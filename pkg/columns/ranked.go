package columns

import (
	"strings"
)

// Mode selects how a keyword is compared against a normalized header.
type Mode int

const (
	// Exact requires the header to equal the keyword.
	Exact Mode = iota
	// Contains accepts any header that contains the keyword.
	Contains
)

// Rule lists the keywords for one field, highest priority first.
type Rule struct {
	Field    Field
	Keywords []string

	// Unless skips the rule when any of these fields already resolved.
	Unless []Field
}

// Ranked resolves fields by walking each rule's keywords in priority order and
// taking the first hit. It is the shared matcher behind the generic mapper and
// every dialect adapter; only the rules and the mode differ.
type Ranked struct {
	Mode  Mode
	Rules []Rule
}

// Map resolves the rules against headers. Rules are applied in order, so a
// rule's Unless list can only see fields of earlier rules.
func (r Ranked) Map(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	cm := ColumnMap{}
	for _, rule := range r.Rules {
		if skip(cm, rule.Unless) {
			continue
		}
		if idx, ok := r.find(normalized, rule.Keywords); ok {
			cm[rule.Field] = idx
		}
	}
	return cm
}

func (r Ranked) find(normalized []string, keywords []string) (int, bool) {
	for _, kw := range keywords {
		switch r.Mode {
		case Contains:
			for i, h := range normalized {
				if strings.Contains(h, kw) {
					return i, true
				}
			}
		default:
			// duplicate headers: the right-most one wins
			for i := len(normalized) - 1; i >= 0; i-- {
				if normalized[i] == kw {
					return i, true
				}
			}
		}
	}
	return -1, false
}

func skip(cm ColumnMap, unless []Field) bool {
	for _, f := range unless {
		if cm.Has(f) {
			return true
		}
	}
	return false
}
