package engine

import (
	"github.com/shopspring/decimal"
)

// Groups is the result of Aggregate: one accumulator per key, with keys kept
// in first-seen order.
type Groups[K comparable, A any] struct {
	order []K
	vals  map[K]A
}

// Entry is one (key, accumulator) pair.
type Entry[K comparable, A any] struct {
	Key   K
	Value A
}

// Aggregate folds records into one accumulator per key. Every record lands
// in exactly one group; seed is the starting accumulator of each group.
func Aggregate[R any, K comparable, A any](records []R, key func(R) K, reduce func(A, R) A, seed A) *Groups[K, A] {
	g := &Groups[K, A]{vals: make(map[K]A)}
	for _, r := range records {
		k := key(r)
		acc, ok := g.vals[k]
		if !ok {
			acc = seed
			g.order = append(g.order, k)
		}
		g.vals[k] = reduce(acc, r)
	}
	return g
}

func (g *Groups[K, A]) Len() int { return len(g.order) }

// Get returns the accumulator for k, or the zero value.
func (g *Groups[K, A]) Get(k K) (A, bool) {
	v, ok := g.vals[k]
	return v, ok
}

// Keys returns the keys in first-seen order.
func (g *Groups[K, A]) Keys() []K {
	out := make([]K, len(g.order))
	copy(out, g.order)
	return out
}

// Each calls fn for every group in first-seen order.
func (g *Groups[K, A]) Each(fn func(K, A)) {
	for _, k := range g.order {
		fn(k, g.vals[k])
	}
}

// Entries returns the groups in first-seen order.
func (g *Groups[K, A]) Entries() []Entry[K, A] {
	out := make([]Entry[K, A], 0, len(g.order))
	for _, k := range g.order {
		out = append(out, Entry[K, A]{Key: k, Value: g.vals[k]})
	}
	return out
}

// Totals is the standard accumulator: count plus the three money columns.
type Totals struct {
	Count      int
	Amount     decimal.Decimal
	Chargeable decimal.Decimal
	VAT        decimal.Decimal
}

// Add folds one transaction in.
func (t Totals) Add(tx Transaction) Totals {
	return Totals{
		Count:      t.Count + 1,
		Amount:     t.Amount.Add(tx.Amount),
		Chargeable: t.Chargeable.Add(tx.Chargeable),
		VAT:        t.VAT.Add(tx.VAT),
	}
}

// Average is Amount / Count, or zero for an empty group.
func (t Totals) Average() decimal.Decimal {
	if t.Count == 0 {
		return decimal.Zero
	}
	return t.Amount.Div(decimal.NewFromInt(int64(t.Count)))
}

// Sum folds every record into a single Totals.
func Sum(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		t = t.Add(tx)
	}
	return t
}

// AddTotals is Totals.Add in reducer form.
func AddTotals(t Totals, tx Transaction) Totals { return t.Add(tx) }

// Select returns the records matching keep, in input order.
func Select[R any](records []R, keep func(R) bool) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Share is part/whole*100 with a zero whole mapped to 0.
func Share(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
