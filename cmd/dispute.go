package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/store"
	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

var disputeCmd = &cobra.Command{
	Use:   "dispute",
	Short: "File and review objections to a judged word",
}

var disputeCreateCmd = &cobra.Command{
	Use:   "create SESSION ATTEMPT",
	Short: "Dispute one attempt of a session and print the dispute id",
	Long:  "ATTEMPT is the attempt id shown by `session show`.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attemptID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("attempt id %q: %w", args[1], err)
		}
		note, _ := cmd.Flags().GetString("note")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.CreateDispute(cmd.Context(), args[0], attemptID, note)
		if err != nil {
			return fmt.Errorf("create dispute: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var disputeReviewCmd = &cobra.Command{
	Use:   "review ID",
	Short: "Approve, reject or reopen a dispute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("dispute id %q: %w", args[0], err)
		}
		rawStatus, _ := cmd.Flags().GetString("status")
		status, err := store.ParseDisputeStatus(rawStatus)
		if err != nil {
			return err
		}
		var errorType *diagnosis.ErrorType
		if v, _ := cmd.Flags().GetString("error-type"); v != "" {
			et := diagnosis.ErrorType(v)
			errorType = &et
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ReviewDispute(cmd.Context(), id, status, errorType); err != nil {
			return fmt.Errorf("review dispute: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dispute %d: %s\n", id, status)
		return nil
	},
}

var disputeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest disputes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status store.DisputeStatus
		if v, _ := cmd.Flags().GetString("status"); v != "" {
			st, err := store.ParseDisputeStatus(v)
			if err != nil {
				return err
			}
			status = st
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		disputes, err := s.Disputes(cmd.Context(), status)
		if err != nil {
			return fmt.Errorf("list disputes: %w", err)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			if disputes == nil {
				disputes = []store.Dispute{}
			}
			return writeJSON(w, disputes)
		}
		printDisputes(w, disputes)
		return nil
	},
}

func init() {
	disputeCreateCmd.Flags().String("note", "", "What the student thinks went wrong")

	disputeReviewCmd.Flags().String("status", "", "pending, approved or rejected")
	disputeReviewCmd.Flags().String("error-type", "", "Replace the diagnosed error type")
	disputeReviewCmd.MarkFlagRequired("status")

	disputeListCmd.Flags().String("status", "", "Only list disputes with this status")
	disputeListCmd.Flags().Bool("json", false, "Print disputes as JSON")

	disputeCmd.AddCommand(disputeCreateCmd)
	disputeCmd.AddCommand(disputeReviewCmd)
	disputeCmd.AddCommand(disputeListCmd)
}

func printDisputes(w io.Writer, disputes []store.Dispute) {
	if len(disputes) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("Ingen indsigelser."))
		return
	}
	fmt.Fprintf(w, "%-5s  %-8s  %-10s  %-16s  %-16s  %-16s  %s\n",
		"Id", "Status", "Elev", "Forventet", "Genkendt", "Fejltype", "Note")
	for _, d := range disputes {
		fmt.Fprintf(w, "%-5d  %-8s  %-10s  %-16s  %-16s  %-16s  %s\n",
			d.ID, d.Status, d.UserID, d.Expected, d.Recognized, d.ErrorType, d.Note)
	}
}
