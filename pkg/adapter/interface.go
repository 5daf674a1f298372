// Package adapter turns a statement grid into canonical transactions.
//
// An adapter instance belongs to one table and is not safe for concurrent
// use; process independent statements with independent adapters.
package adapter

import (
	"time"

	"github.com/voidshard/tallyman/pkg/columns"
	"github.com/voidshard/tallyman/pkg/domain"
	"github.com/voidshard/tallyman/pkg/normalize"
)

// Adapter converts one statement table into transactions.
type Adapter interface {
	// Name identifies the dialect ("SBI", "STANDARD").
	Name() string

	// Validate is advisory: nil means the table looks like this dialect.
	// Process does not require it.
	Validate() error

	// Process returns transactions in source-row order. Rows without a
	// resolvable date are dropped; other bad fields degrade to zero values.
	Process() []domain.Transaction
}

// Options tune row parsing.
type Options struct {
	// DateFormat, when set, is applied strictly to every date cell.
	// Go layouts and strftime formats are both accepted.
	DateFormat string

	// DayFirst reads ambiguous numeric dates as dd/mm (03/04/2024 is April).
	DayFirst bool
}

// base holds what every adapter shares.
type base struct {
	table *domain.Table
	opts  Options
}

func (b *base) cell(row int, cm columns.ColumnMap, f columns.Field) string {
	idx, ok := cm.Lookup(f)
	if !ok {
		return ""
	}
	return b.table.Cell(row, idx)
}

func (b *base) amount(row int, cm columns.ColumnMap, f columns.Field) float64 {
	if !cm.Has(f) {
		return 0
	}
	return normalize.AmountString(b.cell(row, cm, f))
}

func (b *base) date(raw string) (time.Time, bool) {
	if b.opts.DayFirst {
		return normalize.DateStringDayFirst(raw, b.opts.DateFormat)
	}
	return normalize.DateString(raw, b.opts.DateFormat)
}

func (b *base) headers() []string {
	if b.table == nil {
		return nil
	}
	return b.table.Header
}

func (b *base) rows() int {
	return b.table.Len()
}
