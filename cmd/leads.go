package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/export"
)

var (
	leadsLimit   int
	leadsOutPath string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export the lead history",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recorded leads as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		history, err := st.LoadHistory(ctx)
		if err != nil {
			return eris.Wrap(err, "load history")
		}
		if leadsLimit > 0 && len(history) > leadsLimit {
			history = history[len(history)-leadsLimit:]
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the lead history to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		history, err := st.LoadHistory(ctx)
		if err != nil {
			return eris.Wrap(err, "load history")
		}
		if err := export.WriteLeadsXLSX(leadsOutPath, history); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.String("path", leadsOutPath),
			zap.Int("leads", len(history)),
		)
		return nil
	},
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "show only the most recent N leads")
	leadsExportCmd.Flags().StringVar(&leadsOutPath, "out", "leads.xlsx", "output workbook path")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
