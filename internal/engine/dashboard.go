package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vatmonitor/internal/currency"
	"vatmonitor/internal/models"
)

// Options tunes the dashboard queries. Zero fields take DefaultOptions values.
type Options struct {
	Normalizer currency.Normalizer
	// AsOf anchors trend windows and recency comparisons. Zero means the
	// latest transaction date in the store.
	AsOf time.Time

	TrendMonths   int
	TrendDays     int
	TopPerformers int
	Leaderboard   int
	ActivityCap   int

	BankingSectorID int
	DepositTypes    []int
	WithdrawalTypes []int

	Regions []string
}

func DefaultOptions() Options {
	return Options{
		Normalizer:      currency.New(currency.DefaultSymbol),
		TrendMonths:     6,
		TrendDays:       7,
		TopPerformers:   3,
		Leaderboard:     5,
		ActivityCap:     100,
		BankingSectorID: 1,
		DepositTypes:    []int{2, 3, 4, 5, 6},
		WithdrawalTypes: []int{1, 10},
		Regions: []string{
			"North Central", "North East", "North West",
			"South East", "South South", "South West",
		},
	}
}

// Engine answers dashboard queries against one Store. It holds no mutable
// state; every call recomputes from the store.
type Engine struct {
	store *Store
	opts  Options
	ref   time.Time
}

func New(store *Store, opts Options) *Engine {
	d := DefaultOptions()
	if opts.Normalizer.Symbol == "" {
		opts.Normalizer = d.Normalizer
	}
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = d.TrendMonths
	}
	if opts.TrendDays <= 0 {
		opts.TrendDays = d.TrendDays
	}
	if opts.TopPerformers <= 0 {
		opts.TopPerformers = d.TopPerformers
	}
	if opts.Leaderboard <= 0 {
		opts.Leaderboard = d.Leaderboard
	}
	if opts.ActivityCap <= 0 {
		opts.ActivityCap = d.ActivityCap
	}
	if opts.BankingSectorID == 0 {
		opts.BankingSectorID = d.BankingSectorID
	}
	if opts.DepositTypes == nil {
		opts.DepositTypes = d.DepositTypes
	}
	if opts.WithdrawalTypes == nil {
		opts.WithdrawalTypes = d.WithdrawalTypes
	}
	if opts.Regions == nil {
		opts.Regions = d.Regions
	}

	loc := store.Location
	if loc == nil {
		loc = time.UTC
	}
	ref := opts.AsOf
	if ref.IsZero() {
		ref = store.Latest()
	}
	if ref.IsZero() {
		ref = time.Now()
	}
	return &Engine{store: store, opts: opts, ref: ref.In(loc)}
}

// ErrNotFound is returned when an entity-scoped query names an id that is
// not in its table.
var ErrNotFound = errors.New("not found")

// LookupSector returns the sector with id, or ErrNotFound.
func (e *Engine) LookupSector(id int) (models.Sector, error) {
	s, ok := e.store.Sector(id)
	if !ok {
		return models.Sector{}, fmt.Errorf("sector %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// LookupState returns the state with id, or ErrNotFound.
func (e *Engine) LookupState(id int) (models.State, error) {
	s, ok := e.store.State(id)
	if !ok {
		return models.State{}, fmt.Errorf("state %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// Reference is the instant trend windows end at.
func (e *Engine) Reference() time.Time { return e.ref }

func (e *Engine) Options() Options { return e.opts }

// Filter narrows the transactions a query sees. Zero fields match
// everything; From is inclusive and To exclusive.
type Filter struct {
	SectorID   int
	BusinessID int
	StateID    int
	From       time.Time
	To         time.Time
}

// Match tests tx against the filter using its raw ids. Engine.Select
// compares SectorID with the resolved sector instead.
func (f Filter) Match(tx Transaction) bool {
	if f.SectorID != 0 && tx.SectorID != f.SectorID {
		return false
	}
	if f.BusinessID != 0 && tx.BusinessID != f.BusinessID {
		return false
	}
	if f.StateID != 0 && tx.StateID != f.StateID {
		return false
	}
	if !f.From.IsZero() && (!tx.HasDate() || tx.Date.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (!tx.HasDate() || !tx.Date.Before(f.To)) {
		return false
	}
	return true
}

// Select returns the matching transactions in store order. A sector filter
// matches the sector SectorOf resolves, so a record with a dangling
// sector_id still counts under its business's sector.
func (e *Engine) Select(f Filter) []Transaction {
	sector := f.SectorID
	f.SectorID = 0
	return Select(e.store.Transactions, func(tx Transaction) bool {
		if !f.Match(tx) {
			return false
		}
		if sector == 0 {
			return true
		}
		id, _ := e.store.SectorOf(tx)
		return id == sector
	})
}

func money(d decimal.Decimal) float64 { return currency.Float(d) }

func round2(f float64) float64 { return math.Round(f*100) / 100 }

type sectorMonth struct {
	sector int
	month  MonthKey
}

// SectorStats returns one row per sector in table order, including sectors
// without transactions. Transactions whose sector cannot be resolved are
// reported last under UnknownSector. Growth compares the reference month
// with the month before it.
func (e *Engine) SectorStats(f Filter) []models.SectorStat {
	txs := e.Select(f)
	sectorID := func(tx Transaction) int {
		id, _ := e.store.SectorOf(tx)
		return id
	}
	groups := Aggregate(txs, sectorID, AddTotals, Totals{})
	monthly := Aggregate(Select(txs, Transaction.HasDate), func(tx Transaction) sectorMonth {
		return sectorMonth{sector: sectorID(tx), month: MonthOf(tx.Date.In(e.ref.Location()))}
	}, AddTotals, Totals{})
	grand := Sum(txs)
	cur := MonthOf(e.ref)
	prev := cur.Add(-1)

	stat := func(id int, name string) models.SectorStat {
		t, _ := groups.Get(id)
		c, _ := monthly.Get(sectorMonth{id, cur})
		p, _ := monthly.Get(sectorMonth{id, prev})
		return models.SectorStat{
			SectorID:     id,
			Sector:       name,
			Transactions: t.Count,
			Revenue:      money(t.Amount),
			Chargeable:   money(t.Chargeable),
			VAT:          money(t.VAT),
			Average:      money(t.Average()),
			Share:        Share(t.Amount, grand.Amount),
			Growth:       round2(PercentChange(money(c.Amount), money(p.Amount))),
			Display:      e.opts.Normalizer.FormatCompact(t.Amount, 1),
		}
	}

	out := make([]models.SectorStat, 0, e.store.Sectors.Len()+1)
	seen := make(map[int]bool)
	for _, s := range e.store.Sectors.Rows() {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, stat(s.ID, s.Name))
	}
	if _, ok := groups.Get(0); ok {
		out = append(out, stat(0, UnknownSector))
	}
	return out
}

// businessRows left-joins the businesses of a sector (0 = all) with their
// transaction totals.
func (e *Engine) businessRows(sectorID int) ([]models.BusinessRanking, []Transaction) {
	txs := e.Select(Filter{SectorID: sectorID})
	perf := Aggregate(txs, func(tx Transaction) int { return tx.BusinessID }, AddTotals, Totals{})

	var rows []models.BusinessRanking
	for _, b := range e.store.Businesses.Rows() {
		if sectorID != 0 && b.SectorID != sectorID {
			continue
		}
		t, _ := perf.Get(b.ID)
		rows = append(rows, models.BusinessRanking{
			ID:           b.ID,
			Name:         b.Name,
			Rating:       b.Rating,
			ReviewCount:  b.ReviewCount,
			Transactions: t.Count,
			TotalAmount:  money(t.Amount),
			Average:      money(t.Average()),
			Display:      e.opts.Normalizer.FormatCompact(t.Amount, 1),
		})
	}
	return rows, txs
}

// TopBusinesses ranks the businesses of a sector by total amount. Businesses
// without transactions still compete with zero totals. n <= 0 uses the
// configured top-performers count.
func (e *Engine) TopBusinesses(sectorID, n int) []models.BusinessRanking {
	if n <= 0 {
		n = e.opts.TopPerformers
	}
	rows, _ := e.businessRows(sectorID)
	return Top(rows, func(r models.BusinessRanking) float64 { return r.TotalAmount }, n)
}

type recency int

const (
	outsideWindow recency = iota
	recentPeriod
	previousPeriod
)

type businessPeriod struct {
	business int
	period   recency
}

// BusinessActivity ranks every business of a sector by transaction count.
// Trend compares the last 90 days with the 90 days before that, both
// measured back from the reference time.
func (e *Engine) BusinessActivity(sectorID int) []models.BusinessRanking {
	rows, txs := e.businessRows(sectorID)
	recentFrom := e.ref.AddDate(0, 0, -90)
	previousFrom := e.ref.AddDate(0, 0, -180)

	periods := Aggregate(Select(txs, Transaction.HasDate), func(tx Transaction) businessPeriod {
		p := outsideWindow
		switch {
		case !tx.Date.Before(recentFrom) && !tx.Date.After(e.ref):
			p = recentPeriod
		case !tx.Date.Before(previousFrom) && tx.Date.Before(recentFrom):
			p = previousPeriod
		}
		return businessPeriod{business: tx.BusinessID, period: p}
	}, AddTotals, Totals{})

	for i := range rows {
		recent, _ := periods.Get(businessPeriod{rows[i].ID, recentPeriod})
		previous, _ := periods.Get(businessPeriod{rows[i].ID, previousPeriod})
		rows[i].Trend = int(math.Round(PercentChange(float64(recent.Count), float64(previous.Count))))
	}
	return Top(rows, func(r models.BusinessRanking) float64 { return float64(r.Transactions) }, 0)
}

// TopRegions groups by the state's region and ranks by total amount.
func (e *Engine) TopRegions(f Filter, n int) []models.RegionStat {
	if n <= 0 {
		n = e.opts.TopPerformers
	}
	groups := Aggregate(e.Select(f), e.store.RegionOf, AddTotals, Totals{})
	top := TopN(groups, func(t Totals) float64 { return t.Amount.InexactFloat64() }, n)

	out := make([]models.RegionStat, 0, len(top))
	for _, g := range top {
		out = append(out, models.RegionStat{
			Region:       g.Key,
			Transactions: g.Value.Count,
			TotalAmount:  money(g.Value.Amount),
			Display:      e.opts.Normalizer.FormatCompact(g.Value.Amount, 1),
		})
	}
	return out
}

// RegionBreakdown charts chargeable and VAT amounts for every configured
// region, plus any other region seen in the data, sorted by name. The
// Unknown region comes last and only when present.
func (e *Engine) RegionBreakdown(f Filter) models.ChartData {
	groups := Aggregate(e.Select(f), e.store.RegionOf, AddTotals, Totals{})

	names := slices.Clone(e.opts.Regions)
	groups.Each(func(k string, _ Totals) {
		if k != UnknownRegion && !slices.Contains(names, k) {
			names = append(names, k)
		}
	})
	slices.Sort(names)
	if _, ok := groups.Get(UnknownRegion); ok {
		names = append(names, UnknownRegion)
	}

	chargeable := make([]float64, len(names))
	vat := make([]float64, len(names))
	for i, n := range names {
		t, _ := groups.Get(n)
		chargeable[i] = money(t.Chargeable)
		vat[i] = money(t.VAT)
	}
	return models.ChartData{
		Categories: names,
		Series: []models.Series{
			{Name: "VAT Chargeable", Data: chargeable},
			{Name: "VAT Income", Data: vat},
		},
	}
}

// Summary totals one state (or the whole country when stateID is 0).
func (e *Engine) Summary(stateID int) models.Summary {
	label := "National Summary"
	if stateID != 0 {
		if st, ok := Resolve(e.store.States, stateID); ok {
			label = fmt.Sprintf("%s (%s)", st.Name, st.Region)
		} else {
			label = UnknownState
		}
	}
	t := Sum(e.Select(Filter{StateID: stateID}))
	return models.Summary{
		Label:        label,
		Transactions: t.Count,
		Volume:       money(t.Amount),
		Chargeable:   money(t.Chargeable),
		VAT:          money(t.VAT),
	}
}

// MonthlyTrend returns exactly w monthly points ending at the reference
// month. w <= 0 uses the configured trend length.
func (e *Engine) MonthlyTrend(f Filter, w int) []models.TrendPoint {
	if w <= 0 {
		w = e.opts.TrendMonths
	}
	return trendPoints(MonthWindow(e.Select(f), e.ref, w))
}

// DailyTrend returns exactly w daily points ending at the reference day.
func (e *Engine) DailyTrend(f Filter, w int) []models.TrendPoint {
	if w <= 0 {
		w = e.opts.TrendDays
	}
	return trendPoints(DayWindow(e.Select(f), e.ref, w))
}

// ObservedTrend returns only the months that have data, in calendar order.
func (e *Engine) ObservedTrend(f Filter) []models.TrendPoint {
	return trendPoints(ObservedMonths(e.Select(f), e.ref.Location()))
}

// YearlyTrend returns one point per observed year.
func (e *Engine) YearlyTrend(f Filter) []models.TrendPoint {
	return trendPoints(YearSeries(e.Select(f), e.ref.Location()))
}

func trendPoints(buckets []Bucket) []models.TrendPoint {
	amounts := make([]float64, len(buckets))
	for i, b := range buckets {
		amounts[i] = money(b.Totals.Amount)
	}
	changes := Changes(amounts)

	out := make([]models.TrendPoint, len(buckets))
	for i, b := range buckets {
		out[i] = models.TrendPoint{
			Label:        b.Label,
			Year:         b.Year,
			Month:        int(b.Month),
			Day:          b.Day,
			Transactions: b.Totals.Count,
			Amount:       amounts[i],
			Chargeable:   money(b.Totals.Chargeable),
			VAT:          money(b.Totals.VAT),
			Change:       round2(changes[i]),
		}
	}
	return out
}

// TrendChart reshapes trend points into chart categories and series.
func TrendChart(points []models.TrendPoint) models.ChartData {
	cats := make([]string, len(points))
	volume := make([]float64, len(points))
	count := make([]float64, len(points))
	chargeable := make([]float64, len(points))
	vat := make([]float64, len(points))
	for i, p := range points {
		cats[i] = p.Label
		volume[i] = p.Amount
		count[i] = float64(p.Transactions)
		chargeable[i] = p.Chargeable
		vat[i] = p.VAT
	}
	return models.ChartData{
		Categories: cats,
		Series: []models.Series{
			{Name: "Transaction Volume", Data: volume},
			{Name: "Transaction Count", Data: count},
			{Name: "Chargeable", Data: chargeable},
			{Name: "VAT", Data: vat},
		},
	}
}

// TopTransactionTypes ranks transaction types by total amount.
func (e *Engine) TopTransactionTypes(f Filter, n int) []models.TypeStat {
	if n <= 0 {
		n = e.opts.Leaderboard
	}
	groups := Aggregate(e.Select(f), func(tx Transaction) int { return tx.TypeID }, AddTotals, Totals{})
	top := TopN(groups, func(t Totals) float64 { return t.Amount.InexactFloat64() }, n)

	out := make([]models.TypeStat, 0, len(top))
	for _, g := range top {
		out = append(out, models.TypeStat{
			TypeID:       g.Key,
			Name:         e.store.TypeName(g.Key),
			Transactions: g.Value.Count,
			Total:        money(g.Value.Amount),
		})
	}
	return out
}

var tiers = []struct {
	above decimal.Decimal
	tier  string
}{
	{decimal.NewFromInt(1_000_000), "error"},
	{decimal.NewFromInt(500_000), "warning"},
	{decimal.NewFromInt(100_000), "success"},
	{decimal.NewFromInt(50_000), "primary"},
}

// AmountTier buckets a transaction amount into a display severity.
func AmountTier(amount decimal.Decimal) string {
	for _, t := range tiers {
		if amount.GreaterThan(t.above) {
			return t.tier
		}
	}
	return "neutral"
}

func newestFirst(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return b.Date.Compare(a.Date)
	})
}

// RecentActivity returns the newest n transactions as feed items. n is
// capped at the configured activity cap.
func (e *Engine) RecentActivity(f Filter, n int) []models.ActivityItem {
	if n <= 0 {
		n = e.opts.Leaderboard
	}
	if n > e.opts.ActivityCap {
		n = e.opts.ActivityCap
	}
	txs := e.Select(f)
	newestFirst(txs)
	txs = Window(txs, n, 0)

	out := make([]models.ActivityItem, 0, len(txs))
	for _, tx := range txs {
		en := e.store.Enrich(tx)
		out = append(out, models.ActivityItem{
			ID:    fmt.Sprintf("activity-%d", tx.ID),
			Title: en.Type + " Processed",
			Time:  tx.Date,
			Content: fmt.Sprintf("%s completed a %s in %s sector for %s",
				en.Business, strings.ToLower(en.Type), en.Sector, e.opts.Normalizer.Format(tx.Amount, 2)),
			Amount: money(tx.Amount),
			Tier:   AmountTier(tx.Amount),
		})
	}
	return out
}

type flow int

const (
	otherFlow flow = iota
	depositFlow
	withdrawalFlow
)

// BankingBalance splits banking-sector volume into deposits and withdrawals
// by transaction type. Other types are ignored.
func (e *Engine) BankingBalance() models.Balance {
	groups := Aggregate(e.Select(Filter{SectorID: e.opts.BankingSectorID}), func(tx Transaction) flow {
		switch {
		case slices.Contains(e.opts.DepositTypes, tx.TypeID):
			return depositFlow
		case slices.Contains(e.opts.WithdrawalTypes, tx.TypeID):
			return withdrawalFlow
		}
		return otherFlow
	}, AddTotals, Totals{})

	dep, _ := groups.Get(depositFlow)
	wd, _ := groups.Get(withdrawalFlow)
	return models.Balance{
		Deposits:    money(dep.Amount),
		Withdrawals: money(wd.Amount),
		Net:         money(dep.Amount.Sub(wd.Amount)),
	}
}

// Transactions returns enriched rows, newest first, windowed by limit and
// offset. Total counts every matching row.
func (e *Engine) Transactions(f Filter, limit, offset int) models.Page[models.TransactionRow] {
	txs := e.Select(f)
	newestFirst(txs)
	page := Window(txs, limit, offset)

	rows := make([]models.TransactionRow, 0, len(page))
	for _, tx := range page {
		en := e.store.Enrich(tx)
		rows = append(rows, models.TransactionRow{
			TransactionID:   tx.ID,
			Date:            tx.Date,
			Sector:          en.Sector,
			Business:        en.Business,
			Branch:          en.Branch,
			TransactionType: en.Type,
			State:           en.State,
			Region:          en.Region,
			Amount:          money(tx.Amount),
			Chargeable:      money(tx.Chargeable),
			VAT:             money(tx.VAT),
			AmountDisplay:   e.opts.Normalizer.Format(tx.Amount, 2),
		})
	}
	return models.Page[models.TransactionRow]{
		Data:   rows,
		Total:  len(txs),
		Limit:  limit,
		Offset: offset,
	}
}
