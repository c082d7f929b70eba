package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/export"
	"interview-bot/internal/storage"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Regenerate the Excel table from the row journal",
	Long:  `Reads every row from the JSON journal and writes a fresh spreadsheet. The bot does not need to be running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, _ := cmd.Flags().GetString("journal")
		out, _ := cmd.Flags().GetString("out")
		j, err := storage.NewFileJournal(journal)
		if err != nil {
			return err
		}
		n, err := runRebuild(j, out)
		if err != nil {
			return err
		}
		fmt.Printf("Rebuilt %s from %d rows ✅\n", out, n)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().String("journal", "", "Path to the row journal (defaults to JOURNAL_PATH)")
	rebuildCmd.Flags().String("out", "", "Spreadsheet to write (defaults to EXPORT_PATH)")
	rebuildCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("journal") {
			_ = cmd.Flags().Set("journal", cfg.JournalPath)
		}
		if !cmd.Flags().Changed("out") {
			_ = cmd.Flags().Set("out", cfg.ExportPath)
		}
		return nil
	}
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(rec storage.RowRecorder, outPath string) (int, error) {
	rows, err := rec.LoadRows()
	if err != nil {
		return 0, fmt.Errorf("failed to read journal: %w", err)
	}
	if len(rows) == 0 {
		return 0, aggregate.ErrNoData
	}
	x, err := export.NewXLSX(outPath)
	if err != nil {
		return 0, err
	}
	if err := x.Write(aggregate.SortByCapture(rows)); err != nil {
		return 0, fmt.Errorf("failed to write table: %w", err)
	}
	return len(rows), nil
}
