package domain

import (
	"time"
)

// VoucherType is the accounting voucher class of an exported entry.
type VoucherType string

const (
	Payment VoucherType = "Payment"
	Receipt VoucherType = "Receipt"
)

// Placeholder ledger names. Downstream imports match on these exact strings.
const (
	BankLedger     = "Bank Account"
	SuspenseLedger = "Suspense Account"
)

// LedgerEntry is one leg of a voucher. A negative amount is a ledger credit,
// a non-negative amount a ledger debit.
type LedgerEntry struct {
	Ledger         string
	Amount         float64
	DeemedPositive bool
}

// Voucher is a two-leg double-entry record derived from one transaction.
type Voucher struct {
	Type      VoucherType
	Date      time.Time
	Narration string
	Reference string
	Entries   [2]LedgerEntry
}

// Balanced reports whether the legs sum to zero.
func (v Voucher) Balanced() bool {
	return v.Entries[0].Amount+v.Entries[1].Amount == 0
}
