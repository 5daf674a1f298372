package columns

// Generic is the header vocabulary used when no dialect applies.
var Generic = Ranked{
	Mode: Exact,
	Rules: []Rule{
		{Field: Date, Keywords: []string{"date", "txn date", "transaction date", "value date", "posting date"}},
		{Field: Description, Keywords: []string{"description", "narration", "details", "particulars", "remarks"}},
		{Field: Debit, Keywords: []string{"debit", "withdrawal", "dr", "paid", "amount paid"}},
		{Field: Credit, Keywords: []string{"credit", "deposit", "cr", "received", "amount received"}},
		{Field: Amount, Keywords: []string{"amount", "transaction amount", "txn amount"}, Unless: []Field{Debit, Credit}},
		{Field: Balance, Keywords: []string{"balance", "closing balance", "running balance"}},
		{Field: Reference, Keywords: []string{"reference", "reference no", "reference no.", "ref no", "ref no.", "cheque no", "cheque no.", "chq no", "chq no."}},
		{Field: ValueDate, Keywords: []string{"value date", "value dt"}},
	},
}

// Map resolves headers with the generic vocabulary.
func Map(headers []string) ColumnMap {
	cm := Generic.Map(headers)

	// "value date" doubles as a date keyword; never report one column twice.
	if vd, ok := cm[ValueDate]; ok && vd == cm.Index(Date) {
		delete(cm, ValueDate)
	}
	return cm
}
