package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vatmonitor/internal/models"
)

// Dashboard fixture: two banks with data and one idle bank in Banking, one
// telecom with activity spread across the recency windows, and one record
// whose every reference dangles.
func sampleTables() Tables {
	return Tables{
		Sectors: []models.Sector{
			{ID: 1, Name: "Banking", Slug: "banking"},
			{ID: 2, Name: "Telecoms", Slug: "telecoms"},
		},
		Businesses: []models.Business{
			{ID: 1, SectorID: 1, Name: "GTBank", Rating: 4.2, ReviewCount: 120},
			{ID: 2, SectorID: 1, Name: "Access Bank", Rating: 4.0, ReviewCount: 80},
			{ID: 3, SectorID: 2, Name: "MTN", Rating: 4.1, ReviewCount: 300},
			{ID: 4, SectorID: 1, Name: "Idle Bank", Rating: 3.0, ReviewCount: 2},
		},
		Branches: []models.Branch{
			{ID: 1, BusinessID: 1, SectorID: 1, Name: "GTBank Ikeja Branch"},
			{ID: 2, BusinessID: 2, SectorID: 1, Name: "Access Bank Marina Branch"},
			{ID: 3, BusinessID: 3, SectorID: 2, Name: "MTN Abuja Service Center"},
		},
		Types: []models.TransactionType{
			{ID: 1, SectorID: 1, Name: "ATM Withdrawal", Slug: "atm_withdrawal"},
			{ID: 2, SectorID: 1, Name: "Cash Deposit", Slug: "cash_deposit_atm"},
			{ID: 11, SectorID: 2, Name: "Product Sale", Slug: "product_sale"},
		},
		States: []models.State{
			{ID: 1, Name: "Lagos", Slug: "lagos", Region: "South West"},
			{ID: 2, Name: "Kano", Slug: "kano", Region: "North West"},
		},
		Transactions: []models.TransactionRecord{
			tx(1, 1, 1, 1, 2, 1, "2025-06-10T09:00:00.000Z", "₦1,000.00", "₦10.00", "₦0.75"),
			tx(2, 1, 1, 1, 1, 1, "2025-06-12T15:30:00.000Z", "₦2,000.50", "₦20.00", "₦1.50"),
			tx(3, 1, 2, 2, 2, 2, "2025-05-03T08:00:00.000Z", "₦500.00", "₦5.00", "₦0.38"),
			tx(4, 2, 3, 3, 11, 2, "2025-04-20T12:00:00.000Z", "₦750,000.00", "₦7,500.00", "₦562.50"),
			tx(5, 2, 3, 3, 11, 9, "2025-06-01T10:00:00.000Z", "₦1,200,000.00", "₦12,000.00", "₦900.00"),
			tx(6, 9, 99, 99, 99, 0, "garbage", "oops", "", "₦1.00"),
			tx(7, 2, 3, 3, 11, 1, "2025-01-05T10:00:00.000Z", "₦100.00", "₦1.00", "₦0.08"),
		},
	}
}

func tx(id int64, sector, business, branch, typ, state int, date, amount, chargeable, vat string) models.TransactionRecord {
	return models.TransactionRecord{
		TransactionID:     id,
		SectorID:          sector,
		BusinessID:        business,
		BranchID:          branch,
		TransactionTypeID: typ,
		StateID:           state,
		TransactionDate:   date,
		Amount:            amount,
		AmountChargeable:  chargeable,
		AmountVAT:         vat,
	}
}

func sampleEngine(t *testing.T) *Engine {
	t.Helper()
	return New(NewStore(sampleTables(), LoadOptions{}), Options{})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func plain(id int64, sector int, amount string, date string) Transaction {
	tx := Transaction{ID: id, SectorID: sector, Amount: dec(amount)}
	if date != "" {
		tx.Date = at(date)
	}
	return tx
}
