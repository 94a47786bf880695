package accounts

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tidymoney/internal/config"
)

func mapping(t *testing.T, label string) *Mapping {
	t.Helper()
	m, ok := mustService(t).Get(label)
	require.True(t, ok)
	return m
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		row      []string
		payee    string
		amount   string
		date     time.Time
		category string
	}{
		{
			name:   "ally",
			label:  "ally",
			row:    []string{"2024-10-23", "15:31:30", "-49.00", "Withdrawal", "Surprise Savings Booster Transfer to Savings Account"},
			payee:  "Surprise Savings Booster Transfer to Savings Account",
			amount: "-49.00",
			date:   time.Date(2024, 10, 23, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "bank of america credit",
			label:  "bank_of_america",
			row:    []string{"09/24/2024", "123456", "BA ELECTRONIC PAYMENT", "", "860.31"},
			payee:  "BA ELECTRONIC PAYMENT",
			amount: "860.31",
			date:   time.Date(2024, 9, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "discover debit is flipped",
			label:    "discover",
			row:      []string{"09/14/2024", "09/14/2024", "AMAZON.COM*1234567", "29.99", "Merchandise"},
			payee:    "AMAZON.COM*1234567",
			amount:   "-29.99",
			date:     time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC),
			category: "Merchandise",
		},
		{
			name:     "discover payment becomes credit",
			label:    "discover",
			row:      []string{"09/13/2024", "09/13/2024", "DIRECTPAY FULL BALANCE", "-616.62", "Payments and Credits"},
			payee:    "DIRECTPAY FULL BALANCE",
			amount:   "616.62",
			date:     time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC),
			category: "Payments and Credits",
		},
		{
			name:   "unpadded month and day",
			label:  "bank_of_america",
			row:    []string{"9/4/2024", "1", "X", "", "$1,234.50"},
			payee:  "X",
			amount: "1234.50",
			date:   time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := mapping(t, tt.label).Translate(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.payee, txn.Payee)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(txn.Amount), "amount %s", txn.Amount)
			assert.Equal(t, tt.date, txn.Date)
			assert.Equal(t, tt.category, txn.Category)
			assert.Empty(t, txn.Memo)
			assert.Empty(t, txn.CheckNumber)
			assert.Empty(t, txn.OrigPayee, "snapshots are taken by the pipeline")
		})
	}
}

func TestTranslate_OptionalColumns(t *testing.T) {
	svc, err := NewService([]config.CSVMapping{{
		Label:     "checking",
		Identify:  []string{"Date", "Description", "Amount", "Notes", "Check Number"},
		Translate: map[string]string{"Payee": "Description", "Memo": "Notes", "Check#": "Check Number"},
	}})
	require.NoError(t, err)
	m := svc.All()[0]
	assert.Equal(t, "Notes", m.Columns["Memo"])
	assert.Equal(t, "Check Number", m.Column("Check#"))
	assert.Equal(t, "Date", m.Column("Date"), "untranslated columns keep their name")

	txn, err := m.Translate([]string{"2024-01-05", "LANDLORD", "-1200", " January ", "1042"})
	require.NoError(t, err)
	assert.Equal(t, "January", txn.Memo)
	assert.Equal(t, "1042", txn.CheckNumber)
	assert.Empty(t, txn.Category)
}

func TestTranslate_Errors(t *testing.T) {
	ally := mapping(t, "ally")
	row := func(date, amount string) []string {
		return []string{date, "01:00:00", amount, "Withdrawal", "PAYEE"}
	}

	_, err := ally.Translate(row("2024-10-23", "twelve"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ally.Translate(row("2024-10-23", ""))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ally.Translate(row("10/23/2024", "-1.00"))
	var dpe *DateParseError
	require.True(t, errors.As(err, &dpe))
	assert.Equal(t, "10/23/2024", dpe.Value)
	assert.Equal(t, "%Y-%m-%d", dpe.Format)

	_, err = ally.Translate([]string{"2024-10-23", "-1.00"})
	assert.ErrorIs(t, err, ErrRowLength)
}

func TestTranslate_MissingRequired(t *testing.T) {
	svc, err := NewService([]config.CSVMapping{
		{Label: "nopayee", Identify: []string{"Date", "Description", "Amount"}},
		{Label: "nodate", Identify: []string{"Posted", "Payee", "Amount"}},
		{Label: "noamount", Identify: []string{"Date", "Payee", "Debit"}},
	})
	require.NoError(t, err)

	for _, m := range svc.All() {
		_, err := m.Translate([]string{"2024-01-01", "X", "1.00"})
		assert.ErrorIs(t, err, ErrMissingRequiredColumn, m.Label)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.50", "12.5"},
		{" -7.99 ", "-7.99"},
		{"$1,000.00", "1000"},
		{"-$3.10", "-3.1"},
		{"0.00", "0"},
		{"12.300", "12.3"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%q -> %s", tt.in, got)
	}

	for _, in := range []string{"1.2.3", "4.005", "-0.001"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}
