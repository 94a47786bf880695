package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// Rule is one set of conditions under a target value. Every condition that
// is set must hold for the rule to match.
//
// Patterns use Go regexp syntax and are searched for anywhere in the field.
// Matching is case-sensitive; prefix a pattern with (?i) to ignore case.
type Rule struct {
	// PayeePattern is the Pattern of a payee rule, searched in the original payee.
	PayeePattern *regexp.Regexp
	// OrigPayeePattern is searched in the original payee (categories and memos).
	OrigPayeePattern *regexp.Regexp
	// Payee must equal the current, possibly rewritten, payee.
	Payee *string
	// Category must equal the current category. An empty category never matches.
	Category *string

	// Amount, MinAmount and MaxAmount compare against the absolute amount.
	Amount    decimal.NullDecimal
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal

	// IncomeOK false rejects credits.
	IncomeOK bool

	// MinDayInMonth and MaxDayInMonth are 1-31; zero means unset.
	MinDayInMonth int
	MaxDayInMonth int

	MinDayInYear *YearDay
	MaxDayInYear *YearDay
}

// Matches reports whether txn satisfies every condition of the rule.
func (r *Rule) Matches(txn *model.Transaction) bool {
	if !r.IncomeOK && txn.IsIncome() {
		return false
	}

	amt := txn.Amount.Abs()
	if r.Amount.Valid && !amt.Equal(r.Amount.Decimal) {
		return false
	}
	if r.MinAmount.Valid && amt.LessThan(r.MinAmount.Decimal) {
		return false
	}
	if r.MaxAmount.Valid && amt.GreaterThan(r.MaxAmount.Decimal) {
		return false
	}

	if !inMonthWindow(txn.Date, r.MinDayInMonth, r.MaxDayInMonth) {
		return false
	}
	if !inYearWindow(txn.Date, r.MinDayInYear, r.MaxDayInYear) {
		return false
	}

	if r.Payee != nil && *r.Payee != txn.Payee {
		return false
	}
	if r.Category != nil && (txn.Category == "" || *r.Category != txn.Category) {
		return false
	}

	if r.PayeePattern != nil && !r.PayeePattern.MatchString(txn.OrigPayee) {
		return false
	}
	if r.OrigPayeePattern != nil && !r.OrigPayeePattern.MatchString(txn.OrigPayee) {
		return false
	}
	return true
}

// hasPredicate reports whether the rule tests anything besides IncomeOK.
func (r *Rule) hasPredicate() bool {
	return r.PayeePattern != nil ||
		r.OrigPayeePattern != nil ||
		r.Payee != nil ||
		r.Category != nil ||
		r.Amount.Valid ||
		r.MinAmount.Valid ||
		r.MaxAmount.Valid ||
		r.MinDayInMonth != 0 ||
		r.MaxDayInMonth != 0 ||
		r.MinDayInYear != nil ||
		r.MaxDayInYear != nil
}

// key renders the rule's conditions canonically, for duplicate detection.
func (r *Rule) key() string {
	var b strings.Builder
	add := func(name, value string) {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteByte(';')
	}
	if r.PayeePattern != nil {
		add("Pattern", r.PayeePattern.String())
	}
	if r.OrigPayeePattern != nil {
		add("OrigPayee", r.OrigPayeePattern.String())
	}
	if r.Payee != nil {
		add("Payee", *r.Payee)
	}
	if r.Category != nil {
		add("Category", *r.Category)
	}
	for _, a := range []struct {
		name string
		v    decimal.NullDecimal
	}{{"Amount", r.Amount}, {"MinAmount", r.MinAmount}, {"MaxAmount", r.MaxAmount}} {
		if a.v.Valid {
			add(a.name, a.v.Decimal.String())
		}
	}
	if !r.IncomeOK {
		add("IncomeOK", "false")
	}
	if r.MinDayInMonth != 0 {
		add("MinDateInMonth", strconv.Itoa(r.MinDayInMonth))
	}
	if r.MaxDayInMonth != 0 {
		add("MaxDateInMonth", strconv.Itoa(r.MaxDayInMonth))
	}
	if r.MinDayInYear != nil {
		add("MinDateInYear", r.MinDayInYear.String())
	}
	if r.MaxDayInYear != nil {
		add("MaxDateInYear", r.MaxDayInYear.String())
	}
	return b.String()
}
