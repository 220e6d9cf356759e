package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"vatmonitor/internal/currency"
	"vatmonitor/internal/models"
)

// Fixture file names.
const (
	FileTransactions     = "transactions.json"
	FileSectors          = "sectors.json"
	FileBusinesses       = "businesses.json"
	FileBranches         = "branches.json"
	FileTransactionTypes = "transaction_types.json"
	FileStates           = "states.json"
)

// ErrUnknownTable is returned when a required fixture is missing.
var ErrUnknownTable = errors.New("missing table")

// Tables holds the raw decoded fixtures.
type Tables struct {
	Transactions []models.TransactionRecord
	Sectors      []models.Sector
	Businesses   []models.Business
	Branches     []models.Branch
	Types        []models.TransactionType
	States       []models.State
}

type LoadOptions struct {
	Location   *time.Location
	Normalizer currency.Normalizer
	Logger     *zerolog.Logger
}

func (o LoadOptions) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

func (o LoadOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// LoadStore reads every fixture from fsys concurrently and builds the store.
// Missing states or transaction types leave those tables empty; any other
// missing table is an error.
func LoadStore(ctx context.Context, fsys fs.FS, opts LoadOptions) (*Store, error) {
	start := time.Now()
	log := opts.logger()

	var t Tables
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readTable(ctx, fsys, FileTransactions, true, &t.Transactions, log) })
	g.Go(func() error { return readTable(ctx, fsys, FileSectors, true, &t.Sectors, log) })
	g.Go(func() error { return readTable(ctx, fsys, FileBusinesses, true, &t.Businesses, log) })
	g.Go(func() error { return readTable(ctx, fsys, FileBranches, true, &t.Branches, log) })
	g.Go(func() error { return readTable(ctx, fsys, FileTransactionTypes, false, &t.Types, log) })
	g.Go(func() error { return readTable(ctx, fsys, FileStates, false, &t.States, log) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NewStore(t, opts)
	log.Info().
		Int("transactions", len(store.Transactions)).
		Int("businesses", store.Businesses.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("record store loaded")
	return store, nil
}

func readTable[T any](ctx context.Context, fsys fs.FS, name string, required bool, dst *[]T, log *zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			log.Warn().Str("table", name).Msg("optional table missing, using empty table")
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrUnknownTable, name)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	log.Debug().Str("table", name).Int("rows", len(*dst)).Msg("table loaded")
	return nil
}

// NewStore normalizes raw tables into a Store. Bad amounts become zero and
// unparsable dates become the zero time; both are logged, never fatal.
func NewStore(t Tables, opts LoadOptions) *Store {
	log := opts.logger()
	loc := opts.location()
	norm := opts.Normalizer
	if norm.Symbol == "" {
		norm = currency.New("")
	}

	s := &Store{
		Transactions: make([]Transaction, 0, len(t.Transactions)),
		Sectors:      NewIndex(t.Sectors, func(r models.Sector) int { return r.ID }),
		Businesses:   NewIndex(t.Businesses, func(r models.Business) int { return r.ID }),
		Branches:     NewIndex(t.Branches, func(r models.Branch) int { return r.ID }),
		Types:        NewIndex(t.Types, func(r models.TransactionType) int { return r.ID }),
		States:       NewIndex(t.States, func(r models.State) int { return r.ID }),
		Location:     loc,
	}

	for name, dups := range map[string][]int{
		FileSectors:          s.Sectors.Duplicates(),
		FileBusinesses:       s.Businesses.Duplicates(),
		FileBranches:         s.Branches.Duplicates(),
		FileTransactionTypes: s.Types.Duplicates(),
		FileStates:           s.States.Duplicates(),
	} {
		if len(dups) > 0 {
			log.Warn().Str("table", name).Ints("ids", dups).Msg("duplicate ids, keeping first")
		}
	}

	for _, r := range t.Transactions {
		tx := Transaction{
			ID:         r.TransactionID,
			SectorID:   r.SectorID,
			BusinessID: r.BusinessID,
			BranchID:   r.BranchID,
			TypeID:     r.TransactionTypeID,
			StateID:    r.StateID,
			Amount:     parseField(norm, r.Amount, "transaction_amount", r.TransactionID, log),
			Chargeable: parseField(norm, r.AmountChargeable, "transaction_amount_chargeable", r.TransactionID, log),
			VAT:        parseField(norm, r.AmountVAT, "transaction_amount_vat", r.TransactionID, log),
		}
		d, err := ParseDate(r.TransactionDate, loc)
		if err != nil {
			log.Warn().Int64("transaction_id", r.TransactionID).Err(err).Msg("unparsable transaction date")
		}
		tx.Date = d
		if d.After(s.latest) {
			s.latest = d
		}
		if _, ok := s.Businesses.Resolve(tx.BusinessID); !ok {
			log.Warn().Int64("transaction_id", tx.ID).Int("business_id", tx.BusinessID).Msg("dangling business reference")
		}
		s.Transactions = append(s.Transactions, tx)
	}
	return s
}

func parseField(n currency.Normalizer, raw, field string, id int64, log *zerolog.Logger) decimal.Decimal {
	v, err := n.Parse(raw)
	if err != nil {
		log.Warn().Int64("transaction_id", id).Str("field", field).Err(err).Msg("treating amount as zero")
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts ISO-8601 timestamps with or without a zone, or a bare
// date. Values without a zone are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
