package rules

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func str(s string) *string { return &s }

func TestPayeeRuleMatches(t *testing.T) {
	ace := regexp.MustCompile("ACE")
	yd := func(m time.Month, d int) *YearDay { return &YearDay{Month: m, Day: d} }

	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{"pattern", Rule{PayeePattern: ace}, true},
		{"other pattern", Rule{PayeePattern: regexp.MustCompile("Target")}, false},
		{"within range", Rule{PayeePattern: ace, MinAmount: amt("10.00"), MaxAmount: amt("20.00")}, true},
		{"above max", Rule{PayeePattern: ace, MinAmount: amt("10.00"), MaxAmount: amt("15.00")}, false},
		{"exact amount", Rule{PayeePattern: ace, Amount: amt("15.43")}, true},
		{"wrong amount", Rule{PayeePattern: ace, Amount: amt("15.00")}, false},
		{"min day after", Rule{PayeePattern: ace, MinDayInMonth: 6}, false},
		{"min day before", Rule{PayeePattern: ace, MinDayInMonth: 2}, true},
		{"max day after", Rule{PayeePattern: ace, MaxDayInMonth: 6}, true},
		{"max day before", Rule{PayeePattern: ace, MaxDayInMonth: 2}, false},
		{"month wrap", Rule{PayeePattern: ace, MinDayInMonth: 25, MaxDayInMonth: 6}, true},
		{"min year after", Rule{PayeePattern: ace, MinDayInYear: yd(5, 6)}, false},
		{"min year before", Rule{PayeePattern: ace, MinDayInYear: yd(3, 6)}, true},
		{"year window", Rule{PayeePattern: ace, MinDayInYear: yd(3, 6), MaxDayInYear: yd(5, 6)}, true},
		{"year wrap", Rule{PayeePattern: ace, MinDayInYear: yd(12, 3), MaxDayInYear: yd(3, 6)}, false},
	}
	for _, tt := range tests {
		tt.rule.IncomeOK = true
		got := tt.rule.Matches(txn(t, "ACE", "2024-04-03", "-15.43"))
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestCategoryRuleMatches(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		amount   string
		category string
		want     bool
	}{
		{"payee", Rule{Payee: str("ACE")}, "-15.43", "", true},
		{"other payee", Rule{Payee: str("Target")}, "-15.43", "", false},
		{"orig payee", Rule{OrigPayeePattern: regexp.MustCompile("^ACE")}, "-15.43", "", true},
		{"other orig payee", Rule{OrigPayeePattern: regexp.MustCompile("^TARGET")}, "-15.43", "", false},
		{"category without category", Rule{Category: str("Hardware")}, "-15.43", "", false},
		{"category", Rule{Category: str("Hardware")}, "-15.43", "Hardware", true},
		{"other category", Rule{Category: str("Hardware")}, "-15.43", "Garden", false},
		{"amount range", Rule{MinAmount: amt("10.00"), MaxAmount: amt("20.00")}, "-15.43", "", true},
		{"outside range", Rule{MinAmount: amt("10.00"), MaxAmount: amt("15.00")}, "-15.43", "", false},
		{"inclusive min", Rule{MinAmount: amt("15.43")}, "-15.43", "", true},
		{"inclusive max", Rule{MaxAmount: amt("15.43")}, "15.43", "", true},
		{"exact", Rule{Amount: amt("15.43")}, "-15.43", "", true},
		{"exact credit", Rule{Amount: amt("15.43")}, "15.43", "", true},
		{"not exact", Rule{Amount: amt("15.00")}, "-15.43", "", false},
	}
	for _, tt := range tests {
		tt.rule.IncomeOK = true
		tx := txn(t, "ACE", "2024-04-03", tt.amount)
		tx.Category = tt.category
		assert.Equal(t, tt.want, tt.rule.Matches(tx), tt.name)
	}
}

func TestIncomeOK(t *testing.T) {
	park := Rule{OrigPayeePattern: regexp.MustCompile("PARKING")}

	park.IncomeOK = true
	assert.True(t, park.Matches(txn(t, "PARKING REFUND", "2024-04-03", "15.43")))

	park.IncomeOK = false
	assert.False(t, park.Matches(txn(t, "PARKING REFUND", "2024-04-03", "15.43")))
	assert.True(t, park.Matches(txn(t, "PARKING", "2024-04-03", "-15.43")))
}

func TestPayeePatternSearchesOriginalPayee(t *testing.T) {
	r := Rule{PayeePattern: regexp.MustCompile("MKTPL"), IncomeOK: true}
	tx := txn(t, "AMAZON MKTPL*1234567", "2024-08-31", "-24.99")
	tx.Payee = "Amazon.com"
	assert.True(t, r.Matches(tx), "search, not full match, against the original payee")
}

func TestPayeeExactUsesCurrentPayee(t *testing.T) {
	r := Rule{Payee: str("Amazon.com"), IncomeOK: true}
	tx := txn(t, "AMAZON MKTPL", "2024-08-31", "-24.99")
	assert.False(t, r.Matches(tx))
	tx.Payee = "Amazon.com"
	assert.True(t, r.Matches(tx))
}

func TestPatternsAreCaseSensitive(t *testing.T) {
	c := mustCatalog(t, "payees:\n  Subway: SUBWAY\n  Netflix: '(?i)netflix'\n")

	_, ok := c.Payees().Match(txn(t, "Subway 26689 Vancouver WA", "2024-10-14", "-6.98"))
	assert.False(t, ok, "SUBWAY must not match Subway")

	target, ok := c.Payees().Match(txn(t, "SUBWAY 26689", "2024-10-14", "-6.98"))
	assert.True(t, ok)
	assert.Equal(t, "Subway", target)

	target, ok = c.Payees().Match(txn(t, "Netflix.com", "2024-10-18", "-15.49"))
	assert.True(t, ok, "(?i) opts into case-insensitive matching")
	assert.Equal(t, "Netflix", target)
}
