package domain

import (
	"errors"
	"fmt"
	"strings"
)

// MinColumns is the smallest grid that can hold a date, a description and an amount.
const MinColumns = 3

var (
	ErrTooFewColumns = errors.New("insufficient columns")
	ErrNoRows        = errors.New("no data rows")
)

// StructuralError marks a statement that cannot be processed at all.
type StructuralError struct {
	Err    error
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// Table is the row/column grid handed over by a file reader.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable copies header and rows into a Table, trimming header whitespace.
func NewTable(header []string, rows [][]string) *Table {
	h := make([]string, len(header))
	for i := range header {
		h[i] = strings.TrimSpace(header[i])
	}
	return &Table{Header: h, Rows: rows}
}

// Cell returns the raw value at row/col; out of range or negative indexes yield "".
func (t *Table) Cell(row, col int) string {
	if t == nil || col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Len is the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Validate checks the structural minimums of a statement grid.
func (t *Table) Validate() error {
	if t == nil || len(t.Header) == 0 && len(t.Rows) == 0 {
		return &StructuralError{Err: ErrNoRows, Detail: "statement is empty"}
	}
	if len(t.Header) < MinColumns {
		return &StructuralError{
			Err:    ErrTooFewColumns,
			Detail: fmt.Sprintf("expected at least %d, got %d", MinColumns, len(t.Header)),
		}
	}
	if len(t.Rows) == 0 {
		return &StructuralError{Err: ErrNoRows}
	}
	return nil
}
