package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInMonthWindow(t *testing.T) {
	tests := []struct {
		date   time.Time
		lo, hi int
		want   bool
	}{
		{ymd(2024, 1, 1), 0, 0, true},
		{ymd(2024, 4, 16), 0, 0, true},
		{ymd(2024, 4, 2), 4, 0, false},
		{ymd(2024, 4, 16), 4, 0, true},
		{ymd(2024, 4, 26), 0, 23, false},
		{ymd(2024, 4, 16), 0, 23, true},
		// Upper bound beyond the month clamps to its last day.
		{ymd(2024, 2, 29), 0, 31, true},
		{ymd(2022, 2, 28), 0, 31, true},
		{ymd(2024, 4, 30), 0, 31, true},
		{ymd(2024, 5, 31), 0, 31, true},
		{ymd(2024, 2, 29), 31, 0, true},
		{ymd(2024, 2, 28), 31, 0, false},
		// Plain window.
		{ymd(2024, 5, 9), 7, 15, true},
		{ymd(2024, 5, 3), 7, 15, false},
		{ymd(2024, 5, 20), 7, 15, false},
		{ymd(2024, 5, 31), 7, 15, false},
		{ymd(2024, 5, 7), 7, 15, true},
		{ymd(2024, 5, 15), 7, 15, true},
		// Wraparound.
		{ymd(2024, 5, 9), 15, 7, false},
		{ymd(2024, 5, 3), 15, 7, true},
		{ymd(2024, 5, 20), 15, 7, true},
		{ymd(2024, 5, 31), 15, 7, true},
		{ymd(2024, 4, 3), 25, 6, true},
		{ymd(2024, 4, 3), 25, 2, false},
		{ymd(2024, 4, 29), 25, 6, true},
		{ymd(2024, 4, 24), 25, 6, false},
	}
	for _, tt := range tests {
		got := inMonthWindow(tt.date, tt.lo, tt.hi)
		assert.Equal(t, tt.want, got, "inMonthWindow(%s, %d, %d)", tt.date.Format("2006-01-02"), tt.lo, tt.hi)
	}
}

func TestInMonthWindow_WraparoundShortFebruary(t *testing.T) {
	// 2023 February has 28 days: 28..3 covers 28, 1, 2, 3.
	for day := 1; day <= 28; day++ {
		want := day == 28 || day <= 3
		assert.Equal(t, want, inMonthWindow(ymd(2023, 2, day), 28, 3), "day %d", day)
	}
	// A lower bound past the end of February clamps to the 28th.
	assert.True(t, inMonthWindow(ymd(2023, 2, 28), 30, 3))
	assert.False(t, inMonthWindow(ymd(2023, 2, 27), 30, 3))
}

func TestInYearWindow(t *testing.T) {
	yd := func(m time.Month, d int) *YearDay { return &YearDay{Month: m, Day: d} }

	tests := []struct {
		date   time.Time
		lo, hi *YearDay
		want   bool
	}{
		{ymd(2024, 1, 1), nil, nil, true},
		{ymd(2024, 4, 2), yd(6, 4), nil, false},
		{ymd(2024, 4, 2), yd(2, 4), nil, true},
		{ymd(2024, 4, 2), nil, yd(6, 4), true},
		{ymd(2024, 4, 2), nil, yd(2, 4), false},
		{ymd(2024, 5, 9), yd(2, 7), yd(6, 15), true},
		{ymd(2024, 5, 9), yd(6, 15), yd(8, 12), false},
		{ymd(2024, 5, 9), yd(12, 2), yd(2, 12), false},
		{ymd(2024, 5, 9), yd(12, 2), yd(5, 12), true},
		{ymd(2024, 4, 3), yd(3, 6), yd(5, 6), true},
		{ymd(2024, 4, 3), yd(12, 3), yd(5, 6), true},
		{ymd(2024, 4, 3), yd(12, 3), yd(3, 6), false},
		{ymd(2024, 12, 29), yd(12, 3), yd(3, 6), true},
		{ymd(2024, 11, 24), yd(12, 3), yd(3, 6), false},
		// Inclusive bounds.
		{ymd(2024, 3, 6), yd(3, 6), yd(5, 6), true},
		{ymd(2024, 5, 6), yd(3, 6), yd(5, 6), true},
		{ymd(2024, 5, 7), yd(3, 6), yd(5, 6), false},
		// Days beyond the month clamp, leap years included.
		{ymd(2024, 2, 29), yd(1, 1), yd(2, 31), true},
		{ymd(2024, 3, 1), yd(1, 1), yd(2, 31), false},
		{ymd(2023, 2, 28), yd(2, 30), yd(3, 5), true},
		{ymd(2023, 2, 27), yd(2, 30), yd(3, 5), false},
	}
	for _, tt := range tests {
		got := inYearWindow(tt.date, tt.lo, tt.hi)
		assert.Equal(t, tt.want, got, "inYearWindow(%s, %v, %v)", tt.date.Format("2006-01-02"), tt.lo, tt.hi)
	}
}

func TestInYearWindow_WrapsNewYear(t *testing.T) {
	lo := &YearDay{Month: time.December, Day: 28}
	hi := &YearDay{Month: time.January, Day: 3}

	for _, d := range []time.Time{ymd(2024, 12, 28), ymd(2024, 12, 31), ymd(2025, 1, 1), ymd(2025, 1, 3)} {
		assert.True(t, inYearWindow(d, lo, hi), d.Format("2006-01-02"))
	}
	for _, d := range []time.Time{ymd(2024, 12, 27), ymd(2025, 1, 4), ymd(2025, 6, 15)} {
		assert.False(t, inYearWindow(d, lo, hi), d.Format("2006-01-02"))
	}
}
