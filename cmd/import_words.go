package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/catalog"
	"github.com/abhisek/laesemaskine/internal/store"
)

var importWordsCmd = &cobra.Command{
	Use:   "import-words",
	Short: "Convert a word spreadsheet into the words JSON catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		excel, _ := cmd.Flags().GetString("excel")
		out, _ := cmd.Flags().GetString("out")
		sheet, _ := cmd.Flags().GetString("sheet")
		dataVersion, _ := cmd.Flags().GetString("data-version")

		p, err := catalog.ImportWorkbook(excel, catalog.ImportOptions{Sheet: sheet, Version: dataVersion})
		if err != nil {
			return fmt.Errorf("import workbook: %w", err)
		}

		if err := store.EnsureDir(out); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := catalog.WriteJSON(f, p); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}

		slog.Debug("words imported", "sheet", p.Sheet, "count", p.Count, "out", out)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d words from sheet %q to %s\n", p.Count, p.Sheet, out)
		return nil
	},
}

func init() {
	importWordsCmd.Flags().String("excel", "", "Path to the .xlsx word list")
	importWordsCmd.Flags().String("out", "words.json", "Output JSON path")
	importWordsCmd.Flags().String("sheet", "", "Sheet name (default: active sheet)")
	importWordsCmd.Flags().String("data-version", catalog.DefaultDataVersion, "Data version stamp")
	importWordsCmd.MarkFlagRequired("excel")
}
