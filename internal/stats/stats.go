// Package stats derives daily, weekly and monthly rollups from a snapshot's
// records. Every function is pure: identical input yields identical output
// and the records slice is never mutated.
package stats

import (
	"gagyebu/internal/core"
)

type (
	// DayTotal is one entry of a weekly series.
	DayTotal struct {
		Date  string `json:"date"`
		Total int64  `json:"total"`
	}

	// MonthSummary is the category breakdown for one calendar month.
	// DayCount counts records in the month, not days with nonzero spend.
	MonthSummary struct {
		Total          int64                   `json:"total"`
		DayCount       int                     `json:"dayCount"`
		CategoryTotals map[core.Category]int64 `json:"categoryTotals"`
	}

	// CalendarDay splits one day of the month grid into income (absolute
	// sum of negative amounts) and expense (sum of positive amounts).
	CalendarDay struct {
		Date    string `json:"date"`
		Income  int64  `json:"income"`
		Expense int64  `json:"expense"`
		Net     int64  `json:"net"`
	}

	// MonthCalendar is the full month grid plus its totals.
	MonthCalendar struct {
		Days    []CalendarDay `json:"days"`
		Income  int64         `json:"income"`
		Expense int64         `json:"expense"`
	}
)

// DailyTotal sums the amounts of the record matching date; 0 if none.
func DailyTotal(records []core.DayRecord, date string) int64 {
	for _, r := range records {
		if r.Date == date {
			return r.Total()
		}
	}
	return 0
}

// WeeklySeries returns the 7 calendar days ending at anchor inclusive,
// oldest first. Days without a record report total 0.
func WeeklySeries(records []core.DayRecord, anchor string) ([]DayTotal, error) {
	base, err := core.DayIndex(anchor)
	if err != nil {
		return nil, err
	}
	out := make([]DayTotal, 0, 7)
	for i := 6; i >= 0; i-- {
		date := core.DateFromIndex(base - i)
		out = append(out, DayTotal{Date: date, Total: DailyTotal(records, date)})
	}
	return out, nil
}

// MonthlyBreakdown restricts to records sharing the anchor's year-month
// prefix. Categories without entries are omitted from CategoryTotals.
func MonthlyBreakdown(records []core.DayRecord, anchor string) (MonthSummary, error) {
	if err := core.ParseDate(anchor); err != nil {
		return MonthSummary{}, err
	}
	month := core.YearMonth(anchor)
	sum := MonthSummary{CategoryTotals: map[core.Category]int64{}}
	for _, r := range records {
		if core.YearMonth(r.Date) != month {
			continue
		}
		sum.DayCount++
		for _, it := range r.Items {
			sum.CategoryTotals[it.Category] += it.Amount
			sum.Total += it.Amount
		}
	}
	return sum, nil
}

// Calendar builds the month grid for the month containing anchor.
func Calendar(records []core.DayRecord, anchor string) (MonthCalendar, error) {
	days, err := core.MonthDays(anchor)
	if err != nil {
		return MonthCalendar{}, err
	}
	cal := MonthCalendar{Days: make([]CalendarDay, 0, len(days))}
	for _, date := range days {
		day := CalendarDay{Date: date}
		for _, r := range records {
			if r.Date != date {
				continue
			}
			for _, it := range r.Items {
				if it.Amount < 0 {
					day.Income += -it.Amount
				} else {
					day.Expense += it.Amount
				}
			}
		}
		day.Net = day.Income - day.Expense
		cal.Income += day.Income
		cal.Expense += day.Expense
		cal.Days = append(cal.Days, day)
	}
	return cal, nil
}
