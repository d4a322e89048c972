package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/normalize"
	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

// diagnoseOutput is the JSON shape of the diagnose command.
type diagnoseOutput struct {
	diagnosis.Result
	StrictCorrect bool    `json:"strict_correct"`
	Similarity    float64 `json:"similarity"`
	SoundsAlike   bool    `json:"sounds_alike"`
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose EXPECTED RECOGNIZED",
	Short: "Diagnose one recognized word against the expected word",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		expected, recognized := args[0], args[1]

		out := diagnoseOutput{
			Result:        diagnosis.Diagnose(expected, recognized),
			StrictCorrect: normalize.IsCorrectStrict(expected, recognized),
			Similarity:    diagnosis.Similarity(expected, recognized),
			SoundsAlike:   diagnosis.SoundsAlike(expected, recognized),
		}

		w := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if out.IsNeutral() {
			fmt.Fprintln(w, theme.Hint.Render("Intet at vurdere."))
			return nil
		}
		fmt.Fprintf(w, "%s  %s\n", theme.Verdict(out.Correct, out.MessageShort), out.MessageDetail)
		if out.ErrorType != "" {
			fmt.Fprintf(w, "%s %s\n", theme.Label.Render("Fejltype:"), out.ErrorType)
		}
		fmt.Fprintf(w, "%s %.2f  %s %t\n",
			theme.Label.Render("Lighed:"), out.Similarity,
			theme.Label.Render("Lyder ens:"), out.SoundsAlike)
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().Bool("json", false, "Print the diagnosis as JSON")
}
