package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	// Scenario:
	// Row 0: sector 1, ₦1,000.00
	// Row 1: sector 1, ₦2,000.50
	// Row 2: sector 2, ₦500.00
	records := []Transaction{
		plain(1, 1, "1000.00", ""),
		plain(2, 1, "2000.50", ""),
		plain(3, 2, "500.00", ""),
	}

	groups := Aggregate(records, func(tx Transaction) int { return tx.SectorID }, AddTotals, Totals{})

	require.Equal(t, 2, groups.Len())
	assert.Equal(t, []int{1, 2}, groups.Keys())

	var counts []int
	groups.Each(func(_ int, v Totals) { counts = append(counts, v.Count) })
	assert.Equal(t, []int{2, 1}, counts)

	s1, ok := groups.Get(1)
	require.True(t, ok)
	assert.True(t, dec("3000.50").Equal(s1.Amount), "sector 1 total %s", s1.Amount)
	assert.Equal(t, 2, s1.Count)

	s2, ok := groups.Get(2)
	require.True(t, ok)
	assert.True(t, dec("500").Equal(s2.Amount))

	top := TopN(groups, func(t Totals) float64 { return t.Amount.InexactFloat64() }, 1)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Key)
	assert.True(t, dec("3000.50").Equal(top[0].Value.Amount))
}

func TestAggregate_CountsEveryRecordOnce(t *testing.T) {
	var records []Transaction
	for i := 0; i < 50; i++ {
		records = append(records, plain(int64(i), i%7, "1.25", ""))
	}

	groups := Aggregate(records, func(tx Transaction) int { return tx.SectorID }, AddTotals, Totals{})

	total := 0
	for _, e := range groups.Entries() {
		total += e.Value.Count
	}
	assert.Equal(t, len(records), total)
	assert.Equal(t, 7, groups.Len())
}

func TestAggregate_EmptyInput(t *testing.T) {
	groups := Aggregate(nil, func(tx Transaction) int { return tx.SectorID }, AddTotals, Totals{})

	assert.Equal(t, 0, groups.Len())
	assert.Empty(t, groups.Entries())
	assert.Empty(t, TopN(groups, func(t Totals) float64 { return float64(t.Count) }, 3))
}

func TestAggregate_SeedIsNotShared(t *testing.T) {
	records := []Transaction{plain(1, 1, "10", ""), plain(2, 2, "20", "")}
	seed := Totals{Count: 100}

	groups := Aggregate(records, func(tx Transaction) int { return tx.SectorID }, AddTotals, seed)

	a, _ := groups.Get(1)
	b, _ := groups.Get(2)
	assert.Equal(t, 101, a.Count)
	assert.Equal(t, 101, b.Count)
	assert.Equal(t, 100, seed.Count)
}

func TestTotals(t *testing.T) {
	var tot Totals
	assert.True(t, tot.Average().IsZero(), "empty average must be zero")

	tot = tot.Add(Transaction{Amount: dec("100"), Chargeable: dec("2"), VAT: dec("0.15")})
	tot = tot.Add(Transaction{Amount: dec("50"), Chargeable: dec("1"), VAT: dec("0.075")})

	assert.Equal(t, 2, tot.Count)
	assert.True(t, dec("75").Equal(tot.Average()))
	assert.True(t, dec("3").Equal(tot.Chargeable))
	assert.True(t, dec("0.225").Equal(tot.VAT))
}

func TestShare(t *testing.T) {
	assert.Equal(t, 25.0, Share(dec("25"), dec("100")))
	assert.Equal(t, 0.0, Share(dec("25"), dec("0")))
	assert.Equal(t, 33.33, Share(dec("1"), dec("3")))
}
