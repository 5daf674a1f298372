// Package export re-encodes transactions as double-entry vouchers.
package export

import (
	"github.com/voidshard/tallyman/pkg/domain"
)

// Voucher builds the two-leg voucher for one transaction.
//
// Any positive debit makes a Payment, everything else (including a
// zero-movement row) is a Receipt. The bank leg is -debit for payments and
// +credit for receipts; the suspense leg is its exact negation.
func Voucher(txn domain.Transaction) domain.Voucher {
	typ := domain.Receipt
	bank := txn.Credit
	if txn.Debit > 0 {
		typ = domain.Payment
		bank = -txn.Debit
	}

	return domain.Voucher{
		Type:      typ,
		Date:      txn.Date,
		Narration: txn.Description,
		Reference: txn.Reference(),
		Entries: [2]domain.LedgerEntry{
			entry(domain.BankLedger, bank),
			entry(domain.SuspenseLedger, -bank),
		},
	}
}

// Vouchers maps transactions one to one, preserving order.
func Vouchers(txns []domain.Transaction) []domain.Voucher {
	out := make([]domain.Voucher, len(txns))
	for i := range txns {
		out[i] = Voucher(txns[i])
	}
	return out
}

func entry(ledger string, amount float64) domain.LedgerEntry {
	return domain.LedgerEntry{Ledger: ledger, Amount: amount, DeemedPositive: amount > 0}
}
