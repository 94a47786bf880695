package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names shared by mappings and the normalized CSV.
const (
	ColPayee    = "Payee"
	ColCategory = "Category"
	ColMemo     = "Memo"
	ColAmount   = "Amount"
	ColDate     = "Date"
	ColCheck    = "Check#"
)

// CanonicalColumns lists the normalized output columns in order.
var CanonicalColumns = []string{ColPayee, ColCategory, ColMemo, ColAmount, ColDate, ColCheck}

// DateFormat is the canonical output date layout.
const DateFormat = "2006-01-02"

// Transaction is one bank row translated into the canonical schema.
type Transaction struct {
	Payee        string
	OrigPayee    string // raw payee, never rewritten
	Category     string
	OrigCategory string // bank-provided category, never rewritten
	Memo         string
	Amount       decimal.Decimal // negative = debit, positive = credit
	Date         time.Time       // calendar date at UTC midnight
	CheckNumber  string
}

// Snapshot records the original payee and category. It is called once,
// right after translation and before any rule rewrites them.
func (t *Transaction) Snapshot() {
	t.OrigPayee = t.Payee
	t.OrigCategory = t.Category
}

// IsIncome reports whether the transaction is a credit.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Day truncates a time to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month, accounting for leap years.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
