package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/report"
	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

var difficultyCmd = &cobra.Command{
	Use:   "difficulty",
	Short: "Show where a student struggles",
	Long: "Groups a student's attempts in finished sessions by interest category, " +
		"spelling pattern and dyslexia type. With --group and --key, lists the " +
		"attempts in one bucket instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		group, _ := cmd.Flags().GetString("group")
		key, _ := cmd.Flags().GetString("key")
		asJSON, _ := cmd.Flags().GetBool("json")

		words, err := loadCatalog(true)
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.UserAttempts(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("load attempts: %w", err)
		}

		w := cmd.OutOrStdout()
		if group != "" {
			dim, err := report.ParseDimension(group)
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("--key is required with --group")
			}
			items, err := report.Drilldown(records, words, dim, key)
			if err != nil {
				return fmt.Errorf("drill down: %w", err)
			}
			for _, r := range items {
				fmt.Fprintf(w, "%-5d  %-16s  %-16s  %t\n", r.WordID, r.Expected, r.Recognized, r.Correct)
			}
			return nil
		}

		d, err := report.Build(records, words)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		if asJSON {
			return writeJSON(w, d)
		}

		fmt.Fprintf(w, "%s %s (%d forsøg)\n\n", theme.Title.Render("Sværhedsgrad for"), user, d.Attempts)
		printBuckets(w, "Interessekategori", d.ByCategory)
		printBuckets(w, "Stavemønster", d.ByPattern)
		printBuckets(w, "Ordblindetype", d.ByDyslexiaType)

		if len(d.ErrorTypes) > 0 {
			fmt.Fprintln(w, theme.Title.Render("Fejltyper"))
			for _, ec := range d.ErrorTypes {
				fmt.Fprintf(w, "  %-16s  %d\n", ec.ErrorType, ec.Count)
			}
		}
		return nil
	},
}

func printBuckets(w io.Writer, title string, buckets []report.Bucket) {
	fmt.Fprintln(w, theme.Title.Render(title))
	fmt.Fprintf(w, "  %-28s  %5s  %5s  %6s\n", "Nøgle", "Antal", "Fejl", "Andel")
	fmt.Fprintln(w, "  "+strings.Repeat("─", 50))
	for _, b := range buckets {
		fmt.Fprintf(w, "  %-28s  %5d  %5d  %5.0f%%\n", b.Key, b.Total, b.Wrong, b.WrongRate*100)
	}
	fmt.Fprintln(w)
}

func init() {
	difficultyCmd.Flags().String("user", "", "Student id")
	difficultyCmd.Flags().String("group", "", "Drill into one dimension: interessekategori, stavemoenster or ordblind_type")
	difficultyCmd.Flags().String("key", "", "Bucket key to drill into")
	difficultyCmd.Flags().Bool("json", false, "Print the report as JSON")
	difficultyCmd.MarkFlagRequired("user")
}
