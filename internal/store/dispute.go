package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/laesemaskine/internal/diagnosis"
)

var (
	// ErrAttemptNotFound is returned when an attempt id does not belong to
	// the given session.
	ErrAttemptNotFound = errors.New("attempt not found in session")

	// ErrDisputeNotFound is returned when no dispute has the given id.
	ErrDisputeNotFound = errors.New("dispute not found")

	// ErrInvalidDisputeStatus is returned for a status outside
	// DisputeStatuses.
	ErrInvalidDisputeStatus = errors.New("invalid dispute status")

	// ErrInvalidErrorType is returned when a review names an unknown error
	// type.
	ErrInvalidErrorType = errors.New("invalid error type")
)

// DisputeStatus is where a dispute is in review.
type DisputeStatus string

const (
	DisputePending  DisputeStatus = "pending"
	DisputeApproved DisputeStatus = "approved"
	DisputeRejected DisputeStatus = "rejected"
)

// DisputeStatuses lists every valid status.
var DisputeStatuses = []DisputeStatus{DisputePending, DisputeApproved, DisputeRejected}

// ParseDisputeStatus validates a status name.
func ParseDisputeStatus(s string) (DisputeStatus, error) {
	st := DisputeStatus(strings.TrimSpace(s))
	if !slices.Contains(DisputeStatuses, st) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDisputeStatus, s)
	}
	return st, nil
}

// Dispute is a student's objection to how one attempt was judged. The
// attempt texts and error type are copied when the dispute is filed; a
// review may override the error type.
type Dispute struct {
	ID         int64               `json:"id"`
	AttemptID  int64               `json:"session_word_id"`
	SessionID  string              `json:"session_id"`
	UserID     string              `json:"user_id"`
	Expected   string              `json:"expected"`
	Recognized string              `json:"recognized"`
	Note       string              `json:"note,omitempty"`
	ErrorType  diagnosis.ErrorType `json:"error_type"`
	Status     DisputeStatus       `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	ReviewedAt *time.Time          `json:"reviewed_at,omitempty"`
}

type disputeRow struct {
	ID         int64   `db:"id"`
	AttemptID  int64   `db:"session_word_id"`
	SessionID  string  `db:"session_id"`
	UserID     string  `db:"user_id"`
	Expected   string  `db:"expected_text"`
	Recognized string  `db:"recognized_text"`
	Note       *string `db:"note"`
	ErrorType  *string `db:"error_type"`
	Status     string  `db:"status"`
	CreatedAt  int64   `db:"created_at"`
	ReviewedAt *int64  `db:"reviewed_at"`
}

func (r disputeRow) toDispute() Dispute {
	d := Dispute{
		ID:         r.ID,
		AttemptID:  r.AttemptID,
		SessionID:  r.SessionID,
		UserID:     r.UserID,
		Expected:   r.Expected,
		Recognized: r.Recognized,
		Status:     DisputeStatus(r.Status),
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.Note != nil {
		d.Note = *r.Note
	}
	if r.ErrorType != nil {
		d.ErrorType = diagnosis.ErrorType(*r.ErrorType)
	}
	if r.ReviewedAt != nil {
		t := time.UnixMilli(*r.ReviewedAt).UTC()
		d.ReviewedAt = &t
	}
	return d
}

const disputeColumns = `id, session_word_id, session_id, user_id, expected_text, recognized_text,
	note, error_type, status, created_at, reviewed_at`

// DisputeListLimit caps how many disputes Disputes returns.
const DisputeListLimit = 200

// CreateDispute files a pending dispute against attemptID of sessionID and
// returns its id. A blank note is stored as no note.
func (s *Store) CreateDispute(ctx context.Context, sessionID string, attemptID int64, note string) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var a struct {
			UserID     string  `db:"user_id"`
			Expected   string  `db:"expected_text"`
			Recognized string  `db:"recognized_text"`
			ErrorType  *string `db:"error_type"`
		}
		err := tx.GetContext(ctx, &a,
			`SELECT s.user_id, w.expected_text, w.recognized_text, w.error_type
			FROM lm_session_words w JOIN lm_sessions s ON s.id = w.session_id
			WHERE w.id = ? AND w.session_id = ?`,
			attemptID, sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAttemptNotFound
		}
		if err != nil {
			return fmt.Errorf("query attempt: %w", err)
		}

		var notePtr *string
		if n := strings.TrimSpace(note); n != "" {
			notePtr = &n
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lm_disputes (session_word_id, session_id, user_id, expected_text, recognized_text,
				note, error_type, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			attemptID, sessionID, a.UserID, a.Expected, a.Recognized,
			notePtr, a.ErrorType, string(DisputePending), time.Now().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert dispute: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	slog.Debug("dispute created", "dispute", id, "session", sessionID, "attempt", attemptID)
	return id, nil
}

// ReviewDispute sets the status of dispute id and stamps the review time.
// A non-nil errorType replaces the stored error type; nil keeps it.
func (s *Store) ReviewDispute(ctx context.Context, id int64, status DisputeStatus, errorType *diagnosis.ErrorType) error {
	if !slices.Contains(DisputeStatuses, status) {
		return fmt.Errorf("%w: %q", ErrInvalidDisputeStatus, status)
	}
	var et *string
	if errorType != nil {
		if !slices.Contains(diagnosis.ErrorTypes, *errorType) {
			return fmt.Errorf("%w: %q", ErrInvalidErrorType, *errorType)
		}
		v := string(*errorType)
		et = &v
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE lm_disputes SET status = ?, error_type = COALESCE(?, error_type), reviewed_at = ?
		WHERE id = ?`,
		string(status), et, time.Now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("update dispute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update dispute: %w", err)
	}
	if n == 0 {
		return ErrDisputeNotFound
	}
	slog.Debug("dispute reviewed", "dispute", id, "status", status)
	return nil
}

// Dispute returns one dispute.
func (s *Store) Dispute(ctx context.Context, id int64) (*Dispute, error) {
	var row disputeRow
	err := s.db.GetContext(ctx, &row, `SELECT `+disputeColumns+` FROM lm_disputes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query dispute: %w", err)
	}
	d := row.toDispute()
	return &d, nil
}

// Disputes returns the newest disputes, at most DisputeListLimit. An empty
// status lists every status.
func (s *Store) Disputes(ctx context.Context, status DisputeStatus) ([]Dispute, error) {
	q := `SELECT ` + disputeColumns + ` FROM lm_disputes`
	var args []any
	if status != "" {
		if !slices.Contains(DisputeStatuses, status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDisputeStatus, status)
		}
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, DisputeListLimit)

	var rows []disputeRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query disputes: %w", err)
	}
	out := make([]Dispute, len(rows))
	for i, r := range rows {
		out[i] = r.toDispute()
	}
	return out, nil
}
