package adapter

import (
	"fmt"
	"strings"

	"github.com/voidshard/tallyman/pkg/columns"
	"github.com/voidshard/tallyman/pkg/domain"
)

// State Bank of India exports look like
//
//	Txn Date | Value Date | Description | Ref No./Cheque No. | Debit | Credit | Balance
//
// and the headers often carry decorations ("Txn Date (IST)"), hence substring matching.
var sbiColumns = columns.Ranked{
	Mode: columns.Contains,
	Rules: []columns.Rule{
		{Field: columns.Date, Keywords: []string{"txn date", "transaction date"}},
		{Field: columns.Description, Keywords: []string{"description", "narration", "remarks"}},
		{Field: columns.Debit, Keywords: []string{"debit", "withdrawal"}},
		{Field: columns.Credit, Keywords: []string{"credit", "deposit"}},
		{Field: columns.Balance, Keywords: []string{"balance"}},
		{Field: columns.Reference, Keywords: []string{"ref", "cheque"}},
		{Field: columns.ValueDate, Keywords: []string{"value date"}},
	},
}

// SBI is the State Bank of India dialect.
type SBI struct {
	base
}

// NewSBI returns the SBI adapter for table.
func NewSBI(table *domain.Table, opts Options) *SBI {
	return &SBI{base{table: table, opts: opts}}
}

func (s *SBI) Name() string {
	return "SBI"
}

// Columns exposes the dialect mapping the adapter works from.
func (s *SBI) Columns() columns.ColumnMap {
	return sbiColumns.Map(s.headers())
}

func (s *SBI) Validate() error {
	if !s.Columns().Has(columns.Date) {
		return fmt.Errorf("no SBI transaction date column in %v", s.headers())
	}
	return nil
}

func (s *SBI) Process() []domain.Transaction {
	cm := s.Columns()

	txns := []domain.Transaction{}
	for i := 0; i < s.rows(); i++ {
		raw := s.cell(i, cm, columns.Date)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		date, ok := s.date(raw)
		if !ok {
			continue
		}

		txn := domain.NewTransaction(
			date,
			s.cell(i, cm, columns.Description),
			s.amount(i, cm, columns.Debit),
			s.amount(i, cm, columns.Credit),
			s.amount(i, cm, columns.Balance),
		).WithReference(strings.TrimSpace(s.cell(i, cm, columns.Reference)))

		if vd, ok := s.date(s.cell(i, cm, columns.ValueDate)); ok {
			txn = txn.WithValueDate(vd)
		}

		txns = append(txns, txn)
	}
	return txns
}
