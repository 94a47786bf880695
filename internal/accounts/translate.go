package accounts

import (
	"fmt"
	"strings"

	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// Translate converts one raw row, aligned with Identify, into a canonical
// transaction. The amount is normalized so debits are negative. Snapshots
// are not taken here.
func (m *Mapping) Translate(row []string) (model.Transaction, error) {
	var txn model.Transaction
	if len(row) != len(m.Identify) {
		return txn, fmt.Errorf("%w: got %d fields, want %d", ErrRowLength, len(row), len(m.Identify))
	}

	payee, err := m.required(row, model.ColPayee)
	if err != nil {
		return txn, err
	}
	rawDate, err := m.required(row, model.ColDate)
	if err != nil {
		return txn, err
	}
	rawAmount, err := m.required(row, model.ColAmount)
	if err != nil {
		return txn, err
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return txn, err
	}
	if m.DebitIsPositive {
		amount = amount.Neg()
	}

	date, err := strftime.Parse(m.DateFormat, rawDate)
	if err != nil {
		return txn, &DateParseError{Value: rawDate, Format: m.DateFormat, Err: err}
	}

	txn.Payee = payee
	txn.Amount = amount
	txn.Date = model.Day(date)
	txn.Category = m.optional(row, model.ColCategory)
	txn.Memo = m.optional(row, model.ColMemo)
	txn.CheckNumber = m.optional(row, model.ColCheck)
	return txn, nil
}

func (m *Mapping) required(row []string, canonical string) (string, error) {
	v, ok := m.field(row, canonical)
	if !ok {
		return "", fmt.Errorf("%w: %s (looked for %q)", ErrMissingRequiredColumn, canonical, m.Column(canonical))
	}
	return strings.TrimSpace(v), nil
}

func (m *Mapping) optional(row []string, canonical string) string {
	v, _ := m.field(row, canonical)
	return strings.TrimSpace(v)
}

// ParseAmount parses a bank amount, tolerating surrounding spaces, a
// dollar sign and thousands separators. Amounts finer than a cent are
// rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	return d, nil
}
