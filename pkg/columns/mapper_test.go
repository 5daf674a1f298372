package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapFullHeader(t *testing.T) {
	cm := Map([]string{"Txn Date", "Description", "Debit", "Credit", "Balance"})

	assert.Equal(t, ColumnMap{
		Date:        0,
		Description: 1,
		Debit:       2,
		Credit:      3,
		Balance:     4,
	}, cm)
}

func TestMapSingleAmount(t *testing.T) {
	cm := Map([]string{"Date", "Narration", "Amount"})

	assert.Equal(t, 2, cm.Index(Amount))
	assert.False(t, cm.Has(Debit))
	assert.False(t, cm.Has(Credit))
}

func TestMapAmountIgnoredWhenSplitColumnsPresent(t *testing.T) {
	cm := Map([]string{"Date", "Details", "Withdrawal", "Amount"})

	assert.Equal(t, 2, cm.Index(Debit))
	assert.False(t, cm.Has(Amount))
}

func TestMapPriorityOrder(t *testing.T) {
	// "date" outranks "value date" regardless of column position
	cm := Map([]string{"Value Date", "Date", "Remarks", "Description", "Amount"})

	assert.Equal(t, 1, cm.Index(Date))
	assert.Equal(t, 3, cm.Index(Description))
	assert.Equal(t, 0, cm.Index(ValueDate))
}

func TestMapNormalizesHeaders(t *testing.T) {
	cm := Map([]string{"  DATE ", "PARTICULARS", " Dr ", "cr", "Closing Balance", "Ref No."})

	assert.Equal(t, 0, cm.Index(Date))
	assert.Equal(t, 1, cm.Index(Description))
	assert.Equal(t, 2, cm.Index(Debit))
	assert.Equal(t, 3, cm.Index(Credit))
	assert.Equal(t, 4, cm.Index(Balance))
	assert.Equal(t, 5, cm.Index(Reference))
}

func TestMapValueDateNotDuplicated(t *testing.T) {
	cm := Map([]string{"Value Date", "Description", "Amount"})

	assert.Equal(t, 0, cm.Index(Date))
	assert.False(t, cm.Has(ValueDate))
}

func TestMapPartial(t *testing.T) {
	cm := Map([]string{"foo", "bar", "baz"})
	assert.Empty(t, cm)

	_, ok := cm.Lookup(Date)
	assert.False(t, ok)
	assert.Equal(t, -1, cm.Index(Balance))
}

func TestMapDuplicateHeaderLastWins(t *testing.T) {
	cm := Map([]string{"Date", "Description", "Balance", "Balance"})
	assert.Equal(t, 3, cm.Index(Balance))
}

func TestRankedContains(t *testing.T) {
	r := Ranked{
		Mode: Contains,
		Rules: []Rule{
			{Field: Date, Keywords: []string{"txn date", "transaction date"}},
			{Field: Reference, Keywords: []string{"ref", "cheque"}},
		},
	}

	cm := r.Map([]string{"Value Date", "Txn Date (IST)", "Ref No./Cheque No."})
	assert.Equal(t, 1, cm.Index(Date))
	assert.Equal(t, 2, cm.Index(Reference))
}

func TestNames(t *testing.T) {
	headers := []string{"Txn Date", "Description", "Amount"}
	assert.Equal(t, map[string]string{
		"date":        "Txn Date",
		"description": "Description",
		"amount":      "Amount",
	}, Map(headers).Names(headers))
}
