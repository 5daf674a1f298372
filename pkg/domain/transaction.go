package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Transaction is one canonical statement entry. Adapters build it from a
// single source row; nothing modifies it afterwards.
type Transaction struct {
	Date        time.Time
	Description string

	// Debit and Credit are non-negative. Both may be zero (opening balance rows).
	Debit  float64
	Credit float64

	// Balance is 0 when the statement carries no running balance.
	Balance float64

	ReferenceNo *string
	ValueDate   *time.Time
}

// NewTransaction builds a transaction with the date truncated to a calendar day.
func NewTransaction(date time.Time, description string, debit, credit, balance float64) Transaction {
	return Transaction{
		Date:        calendarDate(date),
		Description: description,
		Debit:       debit,
		Credit:      credit,
		Balance:     balance,
	}
}

// WithReference returns a copy carrying the given reference number.
// An empty reference leaves the field unset.
func (t Transaction) WithReference(ref string) Transaction {
	if ref != "" {
		t.ReferenceNo = &ref
	}
	return t
}

// WithValueDate returns a copy carrying the given settlement date.
func (t Transaction) WithValueDate(d time.Time) Transaction {
	vd := calendarDate(d)
	t.ValueDate = &vd
	return t
}

// Reference returns the reference number or "".
func (t Transaction) Reference() string {
	if t.ReferenceNo == nil {
		return ""
	}
	return *t.ReferenceNo
}

type transactionJSON struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Balance     float64 `json:"balance"`
	ReferenceNo *string `json:"reference_no"`
	ValueDate   *string `json:"value_date"`
}

// MarshalJSON renders the flat record form, dates as YYYY-MM-DD.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := transactionJSON{
		Date:        t.Date.Format(dateLayout),
		Description: t.Description,
		Debit:       t.Debit,
		Credit:      t.Credit,
		Balance:     t.Balance,
		ReferenceNo: t.ReferenceNo,
	}
	if t.ValueDate != nil {
		vd := t.ValueDate.Format(dateLayout)
		out.ValueDate = &vd
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both calendar dates and full ISO 8601 datetimes.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var in transactionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	date, err := parseISO(in.Date)
	if err != nil {
		return fmt.Errorf("transaction date: %w", err)
	}

	*t = Transaction{
		Date:        date,
		Description: in.Description,
		Debit:       in.Debit,
		Credit:      in.Credit,
		Balance:     in.Balance,
		ReferenceNo: in.ReferenceNo,
	}

	if in.ValueDate != nil && *in.ValueDate != "" {
		vd, err := parseISO(*in.ValueDate)
		if err != nil {
			return fmt.Errorf("transaction value_date: %w", err)
		}
		t.ValueDate = &vd
	}
	return nil
}

// JSON encodes the transaction as its flat record.
func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

var isoLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return calendarDate(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO 8601 date: %q", s)
}

func calendarDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
