package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"vatmonitor/internal/engine"
	"vatmonitor/internal/models"
)

// Report is the one-shot dashboard snapshot printed by `vatmon report`.
type Report struct {
	Reference    string              `json:"reference"`
	Summary      models.Summary      `json:"summary"`
	Sectors      []models.SectorStat `json:"sectors"`
	TopRegions   []models.RegionStat `json:"top_regions"`
	MonthlyTrend []models.TrendPoint `json:"monthly_trend"`
	TopTypes     []models.TypeStat   `json:"top_transaction_types"`
	Balance      models.Balance      `json:"banking_balance"`
}

func reportCmd() *cobra.Command {
	var filter engine.Filter
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a JSON dashboard report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			body, err := json.MarshalIndent(buildReport(eng, filter), "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}
	cmd.Flags().IntVar(&filter.StateID, "state", 0, "restrict to one state id")
	cmd.Flags().IntVar(&filter.SectorID, "sector", 0, "restrict to one sector id")
	return cmd
}

func buildReport(eng *engine.Engine, f engine.Filter) Report {
	return Report{
		Reference:    eng.Reference().Format("2006-01-02"),
		Summary:      eng.Summary(f.StateID),
		Sectors:      eng.SectorStats(f),
		TopRegions:   eng.TopRegions(f, 0),
		MonthlyTrend: eng.MonthlyTrend(f, 0),
		TopTypes:     eng.TopTransactionTypes(f, 0),
		Balance:      eng.BankingBalance(),
	}
}
