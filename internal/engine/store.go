package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"vatmonitor/internal/models"
)

// Transaction is a fixture transaction with its date and amounts normalized.
type Transaction struct {
	ID         int64
	SectorID   int
	BusinessID int
	BranchID   int
	TypeID     int
	StateID    int
	Date       time.Time
	Amount     decimal.Decimal
	Chargeable decimal.Decimal
	VAT        decimal.Decimal
}

// HasDate reports whether the transaction date was parsed.
func (tx Transaction) HasDate() bool { return !tx.Date.IsZero() }

// Index maps a table's identity field to its row. It is built once and
// never mutated.
type Index[T any] struct {
	rows []T
	pos  map[int]int
	dups []int
}

// NewIndex indexes rows by id. When an id repeats, the first row wins and
// the id is reported by Duplicates.
func NewIndex[T any](rows []T, id func(T) int) *Index[T] {
	ix := &Index[T]{
		rows: rows,
		pos:  make(map[int]int, len(rows)),
	}
	for i, r := range rows {
		k := id(r)
		if _, ok := ix.pos[k]; ok {
			ix.dups = append(ix.dups, k)
			continue
		}
		ix.pos[k] = i
	}
	return ix
}

// Resolve returns the row with the given id.
func (ix *Index[T]) Resolve(id int) (T, bool) {
	var zero T
	if ix == nil {
		return zero, false
	}
	i, ok := ix.pos[id]
	if !ok {
		return zero, false
	}
	return ix.rows[i], true
}

// Rows returns the table in load order.
func (ix *Index[T]) Rows() []T {
	if ix == nil {
		return nil
	}
	return ix.rows
}

func (ix *Index[T]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.rows)
}

// Duplicates lists ids that appeared more than once.
func (ix *Index[T]) Duplicates() []int {
	if ix == nil {
		return nil
	}
	return ix.dups
}

// Store is the read-only record store: every table plus its identity index.
type Store struct {
	Transactions []Transaction

	Sectors    *Index[models.Sector]
	Businesses *Index[models.Business]
	Branches   *Index[models.Branch]
	Types      *Index[models.TransactionType]
	States     *Index[models.State]

	Location *time.Location
	latest   time.Time
}

// Latest is the most recent transaction date, or the zero time.
func (s *Store) Latest() time.Time { return s.latest }
