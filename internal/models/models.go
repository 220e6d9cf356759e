package models

import "time"

// Output shapes consumed by the presentation layer. Money values are rounded
// to 2 decimals; the *Display fields carry the formatted currency string.

type SectorStat struct {
	SectorID     int     `json:"sector_id"`
	Sector       string  `json:"sector"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	Chargeable   float64 `json:"chargeable"`
	VAT          float64 `json:"vat"`
	Average      float64 `json:"average_transaction"`
	Share        float64 `json:"share"`
	Growth       float64 `json:"growth"`
	Display      string  `json:"revenue_display"`
}

type BusinessRanking struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	Transactions int     `json:"transaction_count"`
	TotalAmount  float64 `json:"total_amount"`
	Average      float64 `json:"average_transaction"`
	Display      string  `json:"total_display"`
	Trend        int     `json:"trend,omitempty"`
}

type RegionStat struct {
	Region       string  `json:"region"`
	Transactions int     `json:"transaction_count"`
	TotalAmount  float64 `json:"total_amount"`
	Display      string  `json:"total_display"`
}

type TypeStat struct {
	TypeID       int     `json:"type_id"`
	Name         string  `json:"name"`
	Transactions int     `json:"count"`
	Total        float64 `json:"total"`
}

type Summary struct {
	Label        string  `json:"label"`
	Transactions int     `json:"total_transactions"`
	Volume       float64 `json:"total_volume"`
	Chargeable   float64 `json:"vat_chargeable"`
	VAT          float64 `json:"vat_income"`
}

type TrendPoint struct {
	Label        string  `json:"label"`
	Year         int     `json:"year"`
	Month        int     `json:"month,omitempty"`
	Day          int     `json:"day,omitempty"`
	Transactions int     `json:"count"`
	Amount       float64 `json:"amount"`
	Chargeable   float64 `json:"chargeable"`
	VAT          float64 `json:"vat"`
	Change       float64 `json:"change"`
}

type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

type ChartData struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

type ActivityItem struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Time    time.Time `json:"time"`
	Content string    `json:"content"`
	Amount  float64   `json:"amount"`
	Tier    string    `json:"color"`
}

type Balance struct {
	Deposits    float64 `json:"total_deposits"`
	Withdrawals float64 `json:"total_withdrawals"`
	Net         float64 `json:"account_balance"`
}

type TransactionRow struct {
	TransactionID   int64     `json:"transaction_id"`
	Date            time.Time `json:"transaction_date"`
	Sector          string    `json:"sector"`
	Business        string    `json:"business"`
	Branch          string    `json:"branch"`
	TransactionType string    `json:"transaction_type"`
	State           string    `json:"state"`
	Region          string    `json:"region"`
	Amount          float64   `json:"transaction_amount"`
	Chargeable      float64   `json:"transaction_amount_chargeable"`
	VAT             float64   `json:"transaction_amount_vat"`
	AmountDisplay   string    `json:"amount_display"`
}

// Page wraps a paginated listing the same way the revenue endpoint does.
type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
