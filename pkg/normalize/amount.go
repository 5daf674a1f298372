// Package normalize cleans raw statement cells into amounts and dates.
//
// Neither function returns an error: a cell that cannot be understood
// degrades to zero (amounts) or to "no date" (dates) and the caller decides
// what to do with the row.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var symbolCleaner = strings.NewReplacer(
	",", "",
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
)

var currencyPrefixes = []string{"inr", "rs."}

// Amount converts a raw cell into a float. Missing or unparseable values are 0.
// A trailing Cr/Dr marker is dropped without affecting the sign.
func Amount(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		f, _ := n.Float64()
		return f
	case json.Number:
		return AmountString(n.String())
	case string:
		return AmountString(n)
	case []byte:
		return AmountString(string(n))
	}
	return 0
}

// AmountString is Amount for string cells.
func AmountString(s string) float64 {
	s = strings.TrimSpace(symbolCleaner.Replace(s))
	if s == "" {
		return 0
	}

	lower := strings.ToLower(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			lower = strings.ToLower(s)
			break
		}
	}

	if strings.HasSuffix(lower, "cr") || strings.HasSuffix(lower, "dr") {
		s = strings.TrimSpace(s[:len(s)-2])
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// NaN is how spreadsheets hand over an empty numeric cell.
func finite(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
