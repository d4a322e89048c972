package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/ui/components"
	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show a student's mastery per level",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.Mastery(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("load mastery: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintf(w, "No mastery recorded for %s.\n", user)
			return nil
		}

		fmt.Fprintln(w, theme.Title.Render("Mestring for "+user))
		for _, r := range recs {
			bar := components.NewScoreBar(fmt.Sprintf("Niveau %2d", r.Level), r.Score, 20)
			fmt.Fprintf(w, "%s  %s\n", bar.View(), theme.Hint.Render(r.UpdatedAt.Format("2006-01-02")))
		}
		return nil
	},
}

func init() {
	masteryCmd.Flags().String("user", "", "Student id")
	masteryCmd.MarkFlagRequired("user")
}
