package engine

import (
	"slices"
	"strconv"
	"time"
)

// Month abbreviations in calendar order. Month buckets are always ordered by
// this table (via MonthKey), never by comparing labels.
var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthLabel returns the three-letter abbreviation of m.
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) ordinal() int { return k.Year*12 + int(k.Month) - 1 }

func monthFromOrdinal(n int) MonthKey {
	return MonthKey{Year: n / 12, Month: time.Month(n%12 + 1)}
}

// Add moves k by n months.
func (k MonthKey) Add(n int) MonthKey { return monthFromOrdinal(k.ordinal() + n) }

func (k MonthKey) Compare(o MonthKey) int { return k.ordinal() - o.ordinal() }

func (k MonthKey) Label() string { return MonthLabel(k.Month) }

// DayKey identifies a calendar day.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time) DayKey {
	y, m, d := t.Date()
	return DayKey{Year: y, Month: m, Day: d}
}

// Bucket is one point of a time series.
type Bucket struct {
	Label  string
	Year   int
	Month  time.Month
	Day    int
	Totals Totals
}

func dated(records []Transaction) []Transaction {
	return Select(records, Transaction.HasDate)
}

// MonthWindow returns exactly w monthly buckets ending with the month of end,
// oldest first. Months without transactions are zero-valued.
func MonthWindow(records []Transaction, end time.Time, w int) []Bucket {
	if w <= 0 {
		return []Bucket{}
	}
	groups := Aggregate(dated(records), func(tx Transaction) MonthKey {
		return MonthOf(tx.Date.In(end.Location()))
	}, AddTotals, Totals{})

	first := MonthOf(end).Add(-(w - 1))
	out := make([]Bucket, w)
	for i := range out {
		k := first.Add(i)
		t, _ := groups.Get(k)
		out[i] = Bucket{Label: k.Label(), Year: k.Year, Month: k.Month, Totals: t}
	}
	return out
}

// DayWindow returns exactly w daily buckets ending with the day of end,
// oldest first, labelled with weekday abbreviations.
func DayWindow(records []Transaction, end time.Time, w int) []Bucket {
	if w <= 0 {
		return []Bucket{}
	}
	loc := end.Location()
	groups := Aggregate(dated(records), func(tx Transaction) DayKey {
		return DayOf(tx.Date.In(loc))
	}, AddTotals, Totals{})

	y, m, d := end.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, loc)
	out := make([]Bucket, w)
	for i := range out {
		day := last.AddDate(0, 0, i-(w-1))
		k := DayOf(day)
		t, _ := groups.Get(k)
		out[i] = Bucket{
			Label:  day.Weekday().String()[:3],
			Year:   k.Year,
			Month:  k.Month,
			Day:    k.Day,
			Totals: t,
		}
	}
	return out
}

// ObservedMonths returns one bucket per month that has data, in calendar
// order.
func ObservedMonths(records []Transaction, loc *time.Location) []Bucket {
	groups := Aggregate(dated(records), func(tx Transaction) MonthKey {
		return MonthOf(tx.Date.In(loc))
	}, AddTotals, Totals{})

	keys := groups.Keys()
	slices.SortFunc(keys, MonthKey.Compare)
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		t, _ := groups.Get(k)
		out = append(out, Bucket{Label: k.Label(), Year: k.Year, Month: k.Month, Totals: t})
	}
	return out
}

// YearSeries returns one bucket per observed year, ascending.
func YearSeries(records []Transaction, loc *time.Location) []Bucket {
	groups := Aggregate(dated(records), func(tx Transaction) int {
		return tx.Date.In(loc).Year()
	}, AddTotals, Totals{})

	years := groups.Keys()
	slices.Sort(years)
	out := make([]Bucket, 0, len(years))
	for _, y := range years {
		t, _ := groups.Get(y)
		out = append(out, Bucket{Label: strconv.Itoa(y), Year: y, Totals: t})
	}
	return out
}
