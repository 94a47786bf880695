package pipeline

import (
	"time"

	"github.com/cleared-dev/tidymoney/internal/model"
	"github.com/cleared-dev/tidymoney/internal/rules"
)

// Transform runs the three rule passes over one translated transaction.
// Payees run first so that category and memo rules can test the rewritten
// payee, and categories run before memos so memo rules can test the
// assigned category. Snapshots of payee and category are taken first.
func Transform(cat *rules.Catalog, txn *model.Transaction) {
	txn.Snapshot()
	if payee, ok := cat.Payees().Match(txn); ok {
		txn.Payee = payee
	}
	if category, ok := cat.Categories().Match(txn); ok {
		txn.Category = category
	}
	if memo, ok := cat.Memos().Match(txn); ok {
		txn.Memo = memo
	}
}

// Window is an inclusive calendar-date range. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether date's calendar day lies within the window.
func (w Window) Contains(date time.Time) bool {
	d := model.Day(date)
	if !w.Start.IsZero() && d.Before(model.Day(w.Start)) {
		return false
	}
	if !w.End.IsZero() && d.After(model.Day(w.End)) {
		return false
	}
	return true
}

// Filter returns the transactions dated within w, in their original order.
// Zero-amount rows carry no money and are dropped as well.
func Filter(txns []model.Transaction, w Window) []model.Transaction {
	kept := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Amount.IsZero() || !w.Contains(txn.Date) {
			continue
		}
		kept = append(kept, txn)
	}
	return kept
}
