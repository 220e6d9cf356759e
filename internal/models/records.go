package models

// Input tables. Field names follow the JSON fixtures one-to-one.

type TransactionRecord struct {
	TransactionID     int64  `json:"transaction_id"`
	SectorID          int    `json:"sector_id"`
	BusinessID        int    `json:"business_id"`
	BranchID          int    `json:"branch_id"`
	TransactionTypeID int    `json:"transaction_type_id"`
	StateID           int    `json:"state_id,omitempty"`
	TransactionDate   string `json:"transaction_date"`
	Amount            string `json:"transaction_amount"`
	AmountChargeable  string `json:"transaction_amount_chargeable"`
	AmountVAT         string `json:"transaction_amount_vat"`
}

type Business struct {
	ID          int     `json:"id"`
	SectorID    int     `json:"sector_id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

type Branch struct {
	ID         int    `json:"id"`
	BusinessID int    `json:"business_id"`
	SectorID   int    `json:"sector_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
}

type Sector struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TransactionType carries the upstream rate configuration. The engine only
// uses Name; the rate fields are descriptive.
type TransactionType struct {
	ID           int     `json:"id"`
	SectorID     int     `json:"sector_id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	UsePercent   bool    `json:"use_percent"`
	Number       float64 `json:"number"`
	HasTrigger   bool    `json:"has_trigger"`
	TriggerLimit float64 `json:"trigger_limit"`
}

type State struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Region string `json:"region"`
}
