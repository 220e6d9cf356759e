package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(b []Bucket) []string {
	out := make([]string, len(b))
	for i := range b {
		out[i] = b[i].Label
	}
	return out
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan", MonthLabel(time.January))
	assert.Equal(t, "Dec", MonthLabel(time.December))
	assert.Equal(t, "", MonthLabel(0))
	assert.Equal(t, "", MonthLabel(13))
}

func TestMonthKey(t *testing.T) {
	k := MonthKey{Year: 2025, Month: time.January}

	assert.Equal(t, MonthKey{2024, time.December}, k.Add(-1))
	assert.Equal(t, MonthKey{2024, time.August}, k.Add(-5))
	assert.Equal(t, MonthKey{2026, time.March}, k.Add(14))
	assert.Negative(t, MonthKey{2024, time.December}.Compare(k))
	assert.Positive(t, k.Compare(MonthKey{2024, time.December}))
	assert.Zero(t, k.Compare(MonthOf(at("2025-01-31T23:00:00Z"))))
}

func TestMonthWindow(t *testing.T) {
	// Two months of data in a six month window.
	records := []Transaction{
		plain(1, 1, "100", "2025-05-10T00:00:00Z"),
		plain(2, 1, "50", "2025-06-01T00:00:00Z"),
		plain(3, 1, "25", "2025-06-02T00:00:00Z"),
		plain(4, 1, "999", "2024-06-30T00:00:00Z"),
		plain(5, 1, "7", ""),
	}

	got := MonthWindow(records, at("2025-06-15T00:00:00Z"), 6)

	require.Len(t, got, 6)
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, labels(got))
	zeros := 0
	for _, b := range got {
		if b.Totals.Count == 0 {
			zeros++
			assert.True(t, b.Totals.Amount.IsZero())
		}
	}
	assert.Equal(t, 4, zeros)
	assert.True(t, dec("100").Equal(got[4].Totals.Amount))
	assert.True(t, dec("75").Equal(got[5].Totals.Amount))
	assert.Equal(t, 2, got[5].Totals.Count)
}

func TestMonthWindow_CrossesYear(t *testing.T) {
	records := []Transaction{
		plain(1, 1, "10", "2024-11-03T00:00:00Z"),
		plain(2, 1, "20", "2025-01-20T00:00:00Z"),
	}

	got := MonthWindow(records, at("2025-02-01T00:00:00Z"), 4)

	assert.Equal(t, []string{"Nov", "Dec", "Jan", "Feb"}, labels(got))
	assert.Equal(t, 2024, got[0].Year)
	assert.Equal(t, 2025, got[3].Year)
	assert.True(t, dec("10").Equal(got[0].Totals.Amount))
	assert.True(t, dec("20").Equal(got[2].Totals.Amount))
}

func TestMonthWindow_NonPositive(t *testing.T) {
	assert.Empty(t, MonthWindow(nil, time.Now(), 0))
	assert.Empty(t, MonthWindow(nil, time.Now(), -3))
	assert.Empty(t, DayWindow(nil, time.Now(), 0))
}

func TestDayWindow(t *testing.T) {
	records := []Transaction{
		plain(1, 1, "5", "2025-06-10T09:00:00Z"),
		plain(2, 1, "6", "2025-06-12T23:59:00Z"),
		plain(3, 1, "7", "2025-06-05T12:00:00Z"),
	}

	got := DayWindow(records, at("2025-06-12T15:30:00Z"), 7)

	require.Len(t, got, 7)
	assert.Equal(t, []string{"Fri", "Sat", "Sun", "Mon", "Tue", "Wed", "Thu"}, labels(got))
	assert.Equal(t, 6, got[0].Day)
	assert.Equal(t, 12, got[6].Day)
	assert.True(t, dec("5").Equal(got[4].Totals.Amount))
	assert.True(t, dec("6").Equal(got[6].Totals.Amount))
	total := 0
	for _, b := range got {
		total += b.Totals.Count
	}
	assert.Equal(t, 2, total, "June 5 is outside the window")
}

func TestObservedMonths(t *testing.T) {
	// Lexical label order would put Apr first.
	records := []Transaction{
		plain(1, 1, "1", "2025-04-01T00:00:00Z"),
		plain(2, 1, "1", "2024-12-01T00:00:00Z"),
		plain(3, 1, "1", "2025-01-01T00:00:00Z"),
		plain(4, 1, "1", "2025-04-20T00:00:00Z"),
	}

	got := ObservedMonths(records, time.UTC)

	assert.Equal(t, []string{"Dec", "Jan", "Apr"}, labels(got))
	assert.Equal(t, 2, got[2].Totals.Count)
}

func TestYearSeries(t *testing.T) {
	records := []Transaction{
		plain(1, 1, "1", "2025-04-01T00:00:00Z"),
		plain(2, 1, "2", "2023-12-01T00:00:00Z"),
		plain(3, 1, "3", "2025-01-01T00:00:00Z"),
		plain(4, 1, "4", ""),
	}

	got := YearSeries(records, time.UTC)

	assert.Equal(t, []string{"2023", "2025"}, labels(got))
	assert.True(t, dec("4").Equal(got[1].Totals.Amount))
}
