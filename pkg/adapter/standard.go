package adapter

import (
	"math"
	"strings"

	"github.com/voidshard/tallyman/pkg/columns"
	"github.com/voidshard/tallyman/pkg/domain"
)

// Standard handles statements from unknown banks using the generic column map.
type Standard struct {
	base
}

// NewStandard returns the generic adapter for table.
func NewStandard(table *domain.Table, opts Options) *Standard {
	return &Standard{base{table: table, opts: opts}}
}

func (s *Standard) Name() string {
	return "STANDARD"
}

func (s *Standard) Validate() error {
	return nil
}

// Columns exposes the generic mapping the adapter works from.
func (s *Standard) Columns() columns.ColumnMap {
	return columns.Map(s.headers())
}

func (s *Standard) Process() []domain.Transaction {
	cm := s.Columns()
	split := cm.Has(columns.Debit) && cm.Has(columns.Credit)

	txns := []domain.Transaction{}
	for i := 0; i < s.rows(); i++ {
		date, ok := s.date(s.cell(i, cm, columns.Date))
		if !ok {
			continue
		}

		var debit, credit float64
		switch {
		case split:
			debit = s.amount(i, cm, columns.Debit)
			credit = s.amount(i, cm, columns.Credit)
		case cm.Has(columns.Amount):
			amt := s.amount(i, cm, columns.Amount)
			if amt < 0 {
				debit = math.Abs(amt)
			} else {
				credit = amt
			}
		}

		txn := domain.NewTransaction(
			date,
			s.cell(i, cm, columns.Description),
			debit,
			credit,
			s.amount(i, cm, columns.Balance),
		).WithReference(strings.TrimSpace(s.cell(i, cm, columns.Reference)))

		if vd, ok := s.date(s.cell(i, cm, columns.ValueDate)); ok {
			txn = txn.WithValueDate(vd)
		}

		txns = append(txns, txn)
	}
	return txns
}
