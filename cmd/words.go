package cmd

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Pick words for a session at a target level",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		count, _ := cmd.Flags().GetInt("count")
		band, _ := cmd.Flags().GetInt("band")
		seed, _ := cmd.Flags().GetUint64("seed")
		if !cmd.Flags().Changed("count") {
			count = cfg.Selection.Count
		}
		if !cmd.Flags().Changed("band") {
			band = cfg.Selection.Band
		}

		c, err := loadCatalog(true)
		if err != nil {
			return err
		}

		var rng *rand.Rand
		if cmd.Flags().Changed("seed") {
			rng = rand.New(rand.NewPCG(seed, seed))
		}
		words := c.Select(level, count, band, rng)

		w := cmd.OutOrStdout()
		if len(words) == 0 {
			fmt.Fprintln(w, "No words with a level in the catalog.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-20s  %6s  %-20s  %s\n", "ID", "Ord", "Niveau", "Kategori", "Stavemønster")
		fmt.Fprintln(w, strings.Repeat("─", 76))
		for _, word := range words {
			fmt.Fprintf(w, "%-5d  %-20s  %6d  %-20s  %s\n",
				word.ID, word.Ord, *word.Level, word.Category, word.Pattern)
		}
		fmt.Fprintf(w, "\n%d words\n", len(words))
		return nil
	},
}

func init() {
	wordsCmd.Flags().Int("level", 1, "Target level")
	wordsCmd.Flags().Int("count", 20, "Number of words (default from config)")
	wordsCmd.Flags().Int("band", 0, "Accept levels within this distance of the target (default from config)")
	wordsCmd.Flags().Uint64("seed", 0, "Seed for a reproducible selection")
}
