package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importInputPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import disclosure records into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, err := readRecordsFile(importInputPath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveRecords(ctx, records); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("records", len(records)),
			zap.String("input", importInputPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importInputPath, "input", "", "path to CSV, JSON, or XLSX file (required)")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}
