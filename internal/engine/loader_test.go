package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"vatmonitor/data"
)

func writeFixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func baseFixtures() map[string]string {
	return map[string]string{
		FileSectors:    `[{"id":1,"name":"Banking","slug":"banking"},{"id":1,"name":"Duplicate","slug":"dup"}]`,
		FileBusinesses: `[{"id":1,"sector_id":1,"name":"GTBank"}]`,
		FileBranches:   `[{"id":1,"business_id":1,"sector_id":1,"name":"GTBank Ikeja Branch"}]`,
		FileTransactions: `[
			{"transaction_id":1,"sector_id":1,"business_id":1,"branch_id":1,"transaction_type_id":2,"state_id":1,
			 "transaction_date":"2025-03-01T10:00:00.000Z","transaction_amount":"₦1,000.00",
			 "transaction_amount_chargeable":"₦10.00","transaction_amount_vat":"₦0.75"},
			{"transaction_id":2,"sector_id":1,"business_id":1,"branch_id":1,"transaction_type_id":2,"state_id":1,
			 "transaction_date":"not a date","transaction_amount":"abc",
			 "transaction_amount_chargeable":"","transaction_amount_vat":"₦2.00"},
			{"transaction_id":3,"sector_id":1,"business_id":77,"branch_id":1,"transaction_type_id":2,"state_id":1,
			 "transaction_date":"2025-03-05","transaction_amount":"250",
			 "transaction_amount_chargeable":"₦2.50","transaction_amount_vat":"₦0.19"}
		]`,
	}
}

func TestLoadStore(t *testing.T) {
	dir := writeFixtures(t, baseFixtures())

	store, err := LoadStore(context.Background(), os.DirFS(dir), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	if len(store.Transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(store.Transactions))
	}

	// Row 0 Check
	tx := store.Transactions[0]
	if !tx.Amount.Equal(dec("1000")) {
		t.Errorf("Row 0 Amount: Expected 1000, got %s", tx.Amount)
	}
	if !tx.VAT.Equal(dec("0.75")) {
		t.Errorf("Row 0 VAT: Expected 0.75, got %s", tx.VAT)
	}
	if want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC); !tx.Date.Equal(want) {
		t.Errorf("Row 0 Date: Expected %v, got %v", want, tx.Date)
	}

	// Malformed values degrade to zero instead of failing the load.
	bad := store.Transactions[1]
	if !bad.Amount.IsZero() || !bad.Chargeable.IsZero() {
		t.Errorf("Row 1: expected zero amounts, got %s / %s", bad.Amount, bad.Chargeable)
	}
	if !bad.VAT.Equal(dec("2")) {
		t.Errorf("Row 1 VAT: Expected 2, got %s", bad.VAT)
	}
	if bad.HasDate() {
		t.Errorf("Row 1: expected no date, got %v", bad.Date)
	}

	if !store.Transactions[2].Amount.Equal(dec("250")) {
		t.Errorf("Row 2 Amount: Expected 250, got %s", store.Transactions[2].Amount)
	}

	// Optional tables default to empty.
	if store.Types.Len() != 0 || store.States.Len() != 0 {
		t.Errorf("Expected empty optional tables, got %d types, %d states", store.Types.Len(), store.States.Len())
	}

	// Duplicate ids keep the first row.
	if s, ok := store.Sectors.Resolve(1); !ok || s.Name != "Banking" {
		t.Errorf("Expected first sector row to win, got %+v", s)
	}
	if dups := store.Sectors.Duplicates(); len(dups) != 1 || dups[0] != 1 {
		t.Errorf("Expected duplicate id 1, got %v", dups)
	}

	if want := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC); !store.Latest().Equal(want) {
		t.Errorf("Latest: Expected %v, got %v", want, store.Latest())
	}
}

func TestLoadStore_MissingRequiredTable(t *testing.T) {
	files := baseFixtures()
	delete(files, FileBusinesses)

	_, err := LoadStore(context.Background(), os.DirFS(writeFixtures(t, files)), LoadOptions{})
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("Expected ErrUnknownTable, got %v", err)
	}
}

func TestLoadStore_InvalidJSON(t *testing.T) {
	fsys := fstest.MapFS{
		FileTransactions: {Data: []byte(`[]`)},
		FileSectors:      {Data: []byte(`{"broken"`)},
		FileBusinesses:   {Data: []byte(`[]`)},
		FileBranches:     {Data: []byte(`[]`)},
	}

	if _, err := LoadStore(context.Background(), fsys, LoadOptions{}); err == nil {
		t.Fatal("Expected decode error")
	}
}

func TestLoadStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fsys := fstest.MapFS{}
	if _, err := LoadStore(ctx, fsys, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestLoadStore_Embedded(t *testing.T) {
	store, err := LoadStore(context.Background(), data.FS, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if len(store.Transactions) == 0 {
		t.Fatal("Expected embedded transactions")
	}
	for _, tx := range store.Transactions {
		if !tx.HasDate() {
			t.Errorf("transaction %d has no date", tx.ID)
		}
		if tx.Amount.IsZero() {
			t.Errorf("transaction %d has zero amount", tx.ID)
		}
	}
}

func TestParseDate(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-10T09:00:00.000Z", time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)},
		{"2025-06-10T09:00:00", time.Date(2025, 6, 10, 9, 0, 0, 0, lagos)},
		{"2025-06-10 09:00:00", time.Date(2025, 6, 10, 9, 0, 0, 0, lagos)},
		{"2025-06-10", time.Date(2025, 6, 10, 0, 0, 0, 0, lagos)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in, lagos)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	for _, in := range []string{"", "   ", "10/06/2025", "garbage"} {
		if _, err := ParseDate(in, time.UTC); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}
