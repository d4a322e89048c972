package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/laesemaskine/internal/mastery"
	"github.com/abhisek/laesemaskine/internal/session"
	"github.com/abhisek/laesemaskine/internal/store"
	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run a reading session",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session and print its id",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		mode, _ := cmd.Flags().GetString("feedback-mode")
		if mode == "" {
			mode = string(cfg.FeedbackMode)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.StartSession(cmd.Context(), user, mode)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var sessionAnswerCmd = &cobra.Command{
	Use:   "answer SESSION",
	Short: "Record one spoken word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wordID, _ := cmd.Flags().GetInt("word-id")
		expected, _ := cmd.Flags().GetString("expected")
		recognized, _ := cmd.Flags().GetString("recognized")

		a := session.Attempt{
			WordID:         wordID,
			Expected:       expected,
			Recognized:     recognized,
			ResponseTimeMs: optionalIntFlag(cmd, "response-ms"),
			VisibleMs:      optionalIntFlag(cmd, "visible-ms"),
			StartMs:        optionalIntFlag(cmd, "start-ms"),
			EndMs:          optionalIntFlag(cmd, "end-ms"),
			WordLevel:      optionalIntFlag(cmd, "level"),
		}
		rec := session.Evaluate(a)

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		sess, err := s.Session(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if err := s.RecordAttempt(ctx, sess.ID, rec); err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}

		w := cmd.OutOrStdout()
		if sess.FeedbackMode == session.FeedbackAfterTest {
			fmt.Fprintln(w, theme.Hint.Render("Registreret."))
			return nil
		}
		printRecord(w, rec)
		return nil
	},
}

var sessionFinishCmd = &cobra.Command{
	Use:   "finish SESSION",
	Short: "Finish a session and update mastery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		level := optionalIntFlag(cmd, "level")

		words, err := loadCatalog(false)
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		out, err := s.FinishSession(cmd.Context(), args[0], level, words)
		if err != nil {
			return fmt.Errorf("finish session: %w", err)
		}

		w := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(w, finishJSON(args[0], out))
		}
		printOutcome(w, out)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show SESSION",
	Short: "Show a session and its attempts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		d, err := s.SessionDetail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		printDetail(cmd.OutOrStdout(), d)
		return nil
	},
}

func init() {
	sessionStartCmd.Flags().String("user", "", "Student id")
	sessionStartCmd.Flags().String("feedback-mode", "", "per_word or after_test (default from config)")
	sessionStartCmd.MarkFlagRequired("user")

	sessionAnswerCmd.Flags().Int("word-id", 0, "Catalog word id")
	sessionAnswerCmd.Flags().String("expected", "", "Word shown to the student")
	sessionAnswerCmd.Flags().String("recognized", "", "Text returned by speech recognition")
	sessionAnswerCmd.Flags().String("response-ms", "", "Response time in milliseconds")
	sessionAnswerCmd.Flags().String("visible-ms", "", "How long the word was visible in milliseconds")
	sessionAnswerCmd.Flags().String("start-ms", "", "Clip start offset in milliseconds")
	sessionAnswerCmd.Flags().String("end-ms", "", "Clip end offset in milliseconds")
	sessionAnswerCmd.Flags().String("level", "", "Word level as shown to the student")
	sessionAnswerCmd.MarkFlagRequired("expected")

	sessionFinishCmd.Flags().String("level", "", "Estimated level of the session")
	sessionFinishCmd.Flags().Bool("json", false, "Print the outcome as JSON")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionAnswerCmd)
	sessionCmd.AddCommand(sessionFinishCmd)
	sessionCmd.AddCommand(sessionShowCmd)
}

// optionalIntFlag reads a string flag leniently: values that are not
// integers count as absent.
func optionalIntFlag(cmd *cobra.Command, name string) *int {
	v, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return session.ParseOptionalInt(v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type finishOutput struct {
	SessionID string         `json:"session_id"`
	Status    mastery.Status `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	mastery.Metrics
	Baseline *int        `json:"baseline_mastery"`
	Levels   map[int]int `json:"levels"`
}

func finishJSON(id string, out *mastery.Outcome) finishOutput {
	f := finishOutput{
		SessionID: id,
		Status:    out.Status,
		Metrics:   out.Metrics,
		Baseline:  out.Baseline,
		Levels:    out.Levels,
	}
	if out.Reason != nil {
		f.Reason = out.Reason.Error()
	}
	return f
}

func printRecord(w io.Writer, rec session.Record) {
	d := rec.Diagnosis
	if d.IsNeutral() {
		fmt.Fprintln(w, theme.Hint.Render("Intet at vurdere."))
		return
	}
	fmt.Fprintf(w, "%s  %s\n", theme.Verdict(d.Correct, d.MessageShort), d.MessageDetail)
}

func printOutcome(w io.Writer, out *mastery.Outcome) {
	m := out.Metrics
	lines := []string{
		theme.Title.Render("Session afsluttet"),
		fmt.Sprintf("%s %d/%d", theme.Label.Render("Rigtige:"), m.CorrectTotal, m.TotalWords),
	}
	if out.Status == mastery.StatusPartial {
		lines = append(lines,
			theme.Warning.Render("Kun delvist opdateret: ")+out.Reason.Error())
	} else {
		lines = append(lines,
			fmt.Sprintf("%s %s", theme.Label.Render("Score:"), theme.Value.Render(fmt.Sprintf("%.1f", *m.Score))),
			fmt.Sprintf("%s %.2f  %s %.2f",
				theme.Label.Render("Præcision:"), *m.Accuracy,
				theme.Label.Render("Tempo:"), *m.Speed),
		)
	}
	if out.Baseline != nil {
		lines = append(lines, fmt.Sprintf("%s %d", theme.Label.Render("Startniveau-mestring:"), *out.Baseline))
	}
	for _, level := range slices.Sorted(maps.Keys(out.Levels)) {
		lines = append(lines, fmt.Sprintf("%s %d: %d", theme.Label.Render("Niveau"), level, out.Levels[level]))
	}
	fmt.Fprintln(w, theme.Card.Render(strings.Join(lines, "\n")))
}

func printDetail(w io.Writer, d *store.SessionDetail) {
	sess := d.Session
	fmt.Fprintf(w, "%s %s\n", theme.Title.Render("Session"), sess.ID)
	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		theme.Label.Render("Elev:"), sess.UserID,
		theme.Label.Render("Feedback:"), sess.FeedbackMode,
		theme.Label.Render("Start:"), sess.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "%s %d/%d", theme.Label.Render("Rigtige:"), sess.Totals.CorrectTotal, sess.Totals.TotalWords)
	if sess.Score != nil {
		fmt.Fprintf(w, "  %s %.1f", theme.Label.Render("Score:"), *sess.Score)
	}
	if sess.Status != "" {
		fmt.Fprintf(w, "  %s %s", theme.Label.Render("Status:"), sess.Status)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-6s  %-5s  %-16s  %-16s  %-6s  %-16s  %s\n",
		"Forsøg", "Ord", "Forventet", "Genkendt", "Rigtig", "Fejltype", "Lighed")
	fmt.Fprintln(w, strings.Repeat("─", 84))
	for i, a := range d.Attempts {
		ok := "✓"
		if !a.Correct {
			ok = "✗"
		}
		fmt.Fprintf(w, "%-6d  %-5d  %-16s  %-16s  %-6s  %-16s  %.2f\n",
			d.AttemptIDs[i], a.WordID, a.Expected, a.Recognized, ok, a.ErrorType(), a.Similarity)
	}
}
