package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/mastery"
	"github.com/abhisek/laesemaskine/internal/session"
)

var (
	// ErrSessionNotFound is returned when no session has the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionFinished is returned when writing to a finished session.
	ErrSessionFinished = errors.New("session already finished")
)

// Session is a stored reading session.
type Session struct {
	ID             string
	UserID         string
	FeedbackMode   session.FeedbackMode
	StartedAt      time.Time
	EndedAt        *time.Time
	EstimatedLevel *int
	Totals         session.Totals

	// Score fields are nil until the session is finished, and stay nil when
	// finishing completed only partially.
	Accuracy *float64
	Speed    *float64
	Score    *float64
	Status   mastery.Status
}

// Finished reports whether the session has ended.
func (s Session) Finished() bool { return s.EndedAt != nil }

// SessionDetail is a session with its attempts in the order they were
// recorded. AttemptIDs[i] is the stored id of Attempts[i], the handle a
// dispute refers to.
type SessionDetail struct {
	Session    Session
	Attempts   []session.Record
	AttemptIDs []int64
}

type sessionRow struct {
	ID             string   `db:"id"`
	UserID         string   `db:"user_id"`
	FeedbackMode   string   `db:"feedback_mode"`
	StartedAt      int64    `db:"started_at"`
	EndedAt        *int64   `db:"ended_at"`
	EstimatedLevel *int     `db:"estimated_level"`
	TotalWords     int      `db:"total_words"`
	CorrectTotal   int      `db:"correct_total"`
	Accuracy       *float64 `db:"accuracy"`
	Speed          *float64 `db:"speed"`
	Score          *float64 `db:"session_score"`
	Status         *string  `db:"status"`
}

func (r sessionRow) toSession() Session {
	s := Session{
		ID:             r.ID,
		UserID:         r.UserID,
		FeedbackMode:   session.ParseFeedbackMode(r.FeedbackMode),
		StartedAt:      time.UnixMilli(r.StartedAt).UTC(),
		EstimatedLevel: r.EstimatedLevel,
		Totals:         session.Totals{TotalWords: r.TotalWords, CorrectTotal: r.CorrectTotal},
		Accuracy:       r.Accuracy,
		Speed:          r.Speed,
		Score:          r.Score,
	}
	if r.EndedAt != nil {
		t := time.UnixMilli(*r.EndedAt).UTC()
		s.EndedAt = &t
	}
	if r.Status != nil {
		s.Status = mastery.Status(*r.Status)
	}
	return s
}

type attemptRow struct {
	ID             int64   `db:"id"`
	WordID         int     `db:"word_id"`
	Expected       string  `db:"expected_text"`
	Recognized     string  `db:"recognized_text"`
	Correct        bool    `db:"correct"`
	ErrorType      *string `db:"error_type"`
	Similarity     float64 `db:"similarity"`
	SoundsAlike    bool    `db:"sounds_alike"`
	ResponseTimeMs *int    `db:"response_time_ms"`
	VisibleMs      *int    `db:"visible_ms"`
	StartMs        *int    `db:"start_ms"`
	EndMs          *int    `db:"end_ms"`
	WordLevel      *int    `db:"word_level"`
}

func (r attemptRow) attempt() session.Attempt {
	return session.Attempt{
		WordID:         r.WordID,
		Expected:       r.Expected,
		Recognized:     r.Recognized,
		ResponseTimeMs: r.ResponseTimeMs,
		VisibleMs:      r.VisibleMs,
		StartMs:        r.StartMs,
		EndMs:          r.EndMs,
		WordLevel:      r.WordLevel,
	}
}

// stored returns the record as it was written, without re-running the
// classifier.
func (r attemptRow) stored() session.Record {
	rec := session.Record{
		Attempt:     r.attempt(),
		Correct:     r.Correct,
		Similarity:  r.Similarity,
		SoundsAlike: r.SoundsAlike,
	}
	if r.ErrorType != nil {
		rec.Diagnosis.ErrorType = diagnosis.ErrorType(*r.ErrorType)
	}
	return rec
}

const attemptColumns = `word_id, expected_text, recognized_text, correct, error_type,
	similarity, sounds_alike, response_time_ms, visible_ms, start_ms, end_ms, word_level`

// StartSession creates a session for userID and returns its id. Unknown
// feedback modes fall back to per_word.
func (s *Store) StartSession(ctx context.Context, userID, feedbackMode string) (string, error) {
	if userID == "" {
		return "", mastery.ErrMissingUser
	}
	id := uuid.NewString()
	mode := session.ParseFeedbackMode(feedbackMode)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lm_sessions (id, user_id, feedback_mode, started_at) VALUES (?, ?, ?, ?)`,
		id, userID, string(mode), time.Now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	slog.Debug("session started", "session", id, "user", userID, "feedback_mode", mode)
	return id, nil
}

// RecordAttempt stores an evaluated attempt and bumps the session's running
// totals in one transaction.
func (s *Store) RecordAttempt(ctx context.Context, sessionID string, rec session.Record) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		row, err := loadSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if row.EndedAt != nil {
			return ErrSessionFinished
		}

		var errType *string
		if et := rec.ErrorType(); et != "" {
			v := string(et)
			errType = &v
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lm_session_words (session_id, `+attemptColumns+`, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, rec.WordID, rec.Expected, rec.Recognized, rec.Correct, errType,
			rec.Similarity, rec.SoundsAlike, rec.ResponseTimeMs, rec.VisibleMs,
			rec.StartMs, rec.EndMs, rec.WordLevel, time.Now().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		correct := 0
		if rec.Correct {
			correct = 1
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE lm_sessions SET total_words = total_words + 1, correct_total = correct_total + ? WHERE id = ?`,
			correct, sessionID,
		)
		if err != nil {
			return fmt.Errorf("update session totals: %w", err)
		}
		return nil
	})
}

// FinishSession folds the session into mastery and stores the session
// metrics. Both mastery passes and the session update share one
// transaction, so concurrent finishes for the same user cannot lose
// updates. A partial outcome is still committed: the baseline and any
// levels written before the failure are kept.
func (s *Store) FinishSession(ctx context.Context, sessionID string, estimatedLevel *int, words session.WordLookup) (*mastery.Outcome, error) {
	var out *mastery.Outcome
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		row, err := loadSession(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if row.EndedAt != nil {
			return ErrSessionFinished
		}

		attempts, err := loadAttempts(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		records := make([]session.Record, len(attempts))
		for i, a := range attempts {
			records[i] = a.stored()
		}

		updater := mastery.NewUpdater(&txMastery{tx: tx}, words)
		out, err = updater.Finalize(ctx, mastery.Input{
			UserID:         row.UserID,
			Records:        records,
			EstimatedLevel: estimatedLevel,
			Totals:         &session.Totals{TotalWords: row.TotalWords, CorrectTotal: row.CorrectTotal},
		})
		if err != nil {
			return fmt.Errorf("finalize mastery: %w", err)
		}

		m := out.Metrics
		_, err = tx.ExecContext(ctx,
			`UPDATE lm_sessions SET ended_at = ?, estimated_level = ?, total_words = ?, correct_total = ?,
				accuracy = ?, speed = ?, session_score = ?, status = ? WHERE id = ?`,
			time.Now().UnixMilli(), estimatedLevel, m.TotalWords, m.CorrectTotal,
			m.Accuracy, m.Speed, m.Score, string(out.Status), sessionID,
		)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status == mastery.StatusPartial {
		slog.Warn("session finished partially", "session", sessionID, "reason", out.Reason)
	} else {
		slog.Debug("session finished", "session", sessionID, "score", *out.Metrics.Score)
	}
	return out, nil
}

// Session returns the stored session row.
func (s *Store) Session(ctx context.Context, sessionID string) (*Session, error) {
	row, err := loadSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	sess := row.toSession()
	return &sess, nil
}

// SessionDetail returns a session and its attempts. Diagnoses are
// recomputed from the stored texts rather than read back.
func (s *Store) SessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	row, err := loadSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	attempts, err := loadAttempts(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}

	d := &SessionDetail{Session: row.toSession()}
	for _, a := range attempts {
		d.Attempts = append(d.Attempts, session.Evaluate(a.attempt()))
		d.AttemptIDs = append(d.AttemptIDs, a.ID)
	}
	return d, nil
}

// UserAttempts returns the stored attempts of a user's finished sessions.
func (s *Store) UserAttempts(ctx context.Context, userID string) ([]session.Record, error) {
	var rows []attemptRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+attemptColumns+` FROM lm_session_words w
		JOIN lm_sessions s ON s.id = w.session_id
		WHERE s.user_id = ? AND s.ended_at IS NOT NULL
		ORDER BY w.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query user attempts: %w", err)
	}
	records := make([]session.Record, len(rows))
	for i, r := range rows {
		records[i] = r.stored()
	}
	return records, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func loadSession(ctx context.Context, q sqlx.QueryerContext, id string) (*sessionRow, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, q, &row,
		`SELECT id, user_id, feedback_mode, started_at, ended_at, estimated_level,
			total_words, correct_total, accuracy, speed, session_score, status
		FROM lm_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &row, nil
}

func loadAttempts(ctx context.Context, q sqlx.QueryerContext, sessionID string) ([]attemptRow, error) {
	var rows []attemptRow
	err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT id, `+attemptColumns+` FROM lm_session_words WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return rows, nil
}
