// Package columns maps arbitrary statement headers onto canonical fields.
package columns

import (
	"strings"
)

// Field is a canonical statement field.
type Field string

const (
	Date        Field = "date"
	Description Field = "description"
	Debit       Field = "debit"
	Credit      Field = "credit"
	Balance     Field = "balance"
	Amount      Field = "amount"
	Reference   Field = "reference"
	ValueDate   Field = "value_date"
)

// ColumnMap points each resolved canonical field at a column index.
// Fields that did not resolve are absent.
type ColumnMap map[Field]int

// Lookup returns the column for f and whether it resolved.
func (m ColumnMap) Lookup(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// Has reports whether f resolved.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Index returns the column for f, or -1.
func (m ColumnMap) Index(f Field) int {
	if idx, ok := m[f]; ok {
		return idx
	}
	return -1
}

// Names renders the map as field -> header name, for reporting.
func (m ColumnMap) Names(headers []string) map[string]string {
	out := make(map[string]string, len(m))
	for f, idx := range m {
		if idx >= 0 && idx < len(headers) {
			out[string(f)] = headers[idx]
		}
	}
	return out
}

// Normalize lower-cases and trims a header for keyword comparison.
func Normalize(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}
