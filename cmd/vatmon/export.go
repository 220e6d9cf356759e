package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vatmonitor/internal/engine"
)

func exportCmd() *cobra.Command {
	var (
		out    string
		filter engine.Filter
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write enriched transactions as an Arrow IPC stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			var file *os.File
			if out != "-" {
				if file, err = os.Create(out); err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				w = file
			}

			n, err := eng.ExportArrow(w, filter)
			if file != nil {
				if cerr := file.Close(); err == nil && cerr != nil {
					err = fmt.Errorf("close %s: %w", out, cerr)
				}
			}
			if err != nil {
				return err
			}
			log.Info().Int("rows", n).Str("out", out).Msg("export complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "transactions.arrow", `output file ("-" for stdout)`)
	cmd.Flags().IntVar(&filter.SectorID, "sector", 0, "restrict to one sector id")
	cmd.Flags().IntVar(&filter.StateID, "state", 0, "restrict to one state id")
	return cmd
}
