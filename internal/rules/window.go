package rules

import (
	"fmt"
	"time"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// YearDay is a month/day pair used by MinDateInYear and MaxDateInYear.
type YearDay struct {
	Month time.Month
	Day   int
}

func (d YearDay) String() string {
	return fmt.Sprintf("%d/%d", d.Month, d.Day)
}

// clamp pulls Day back to the last day of Month in the given year,
// so [2, 31] means the end of February.
func (d YearDay) clamp(year int) YearDay {
	if last := model.DaysIn(year, d.Month); d.Day > last {
		d.Day = last
	}
	return d
}

func (d YearDay) after(o YearDay) bool {
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// inMonthWindow reports whether date's day of month lies within [lo, hi].
// Zero bounds are absent. Bounds beyond the end of the month are clamped to
// it. When lo > hi the window wraps across the month boundary.
func inMonthWindow(date time.Time, lo, hi int) bool {
	if lo == 0 && hi == 0 {
		return true
	}
	last := model.DaysIn(date.Year(), date.Month())
	lo, hi = min(lo, last), min(hi, last)
	day := date.Day()

	switch {
	case lo != 0 && hi != 0:
		if lo <= hi {
			return day >= lo && day <= hi
		}
		return day >= lo || day <= hi
	case lo != 0:
		return day >= lo
	default:
		return day <= hi
	}
}

// inYearWindow reports whether date's month/day lies within [lo, hi].
// Nil bounds are absent. When lo is after hi the window wraps across the
// year boundary.
func inYearWindow(date time.Time, lo, hi *YearDay) bool {
	if lo == nil && hi == nil {
		return true
	}
	year := date.Year()
	d := YearDay{Month: date.Month(), Day: date.Day()}

	switch {
	case lo != nil && hi != nil:
		l, h := lo.clamp(year), hi.clamp(year)
		if !l.after(h) {
			return !l.after(d) && !d.after(h)
		}
		return !l.after(d) || !d.after(h)
	case lo != nil:
		return !lo.clamp(year).after(d)
	default:
		return !d.after(hi.clamp(year))
	}
}
