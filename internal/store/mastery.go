package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// MasteryRecord is a user's score at one skill level.
type MasteryRecord struct {
	UserID    string
	Level     int
	Score     int
	UpdatedAt time.Time
}

type masteryRow struct {
	UserID    string `db:"user_id"`
	Level     int    `db:"level"`
	Score     int    `db:"mastery_1_10"`
	UpdatedAt int64  `db:"updated_at"`
}

// Mastery lists a user's mastery records in level order.
func (s *Store) Mastery(ctx context.Context, userID string) ([]MasteryRecord, error) {
	var rows []masteryRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT user_id, level, mastery_1_10, updated_at FROM lm_mastery WHERE user_id = ? ORDER BY level`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	out := make([]MasteryRecord, len(rows))
	for i, r := range rows {
		out[i] = MasteryRecord{
			UserID:    r.UserID,
			Level:     r.Level,
			Score:     r.Score,
			UpdatedAt: time.UnixMilli(r.UpdatedAt).UTC(),
		}
	}
	return out, nil
}

// txMastery implements mastery.Store inside a transaction.
type txMastery struct {
	tx *sqlx.Tx
}

func (m *txMastery) MasteryScore(ctx context.Context, userID string, level int) (int, bool, error) {
	var score int
	err := m.tx.GetContext(ctx, &score,
		`SELECT mastery_1_10 FROM lm_mastery WHERE user_id = ? AND level = ?`, userID, level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query mastery: %w", err)
	}
	return score, true, nil
}

func (m *txMastery) UpsertMastery(ctx context.Context, userID string, level, score int) error {
	_, err := m.tx.NamedExecContext(ctx,
		`INSERT INTO lm_mastery (user_id, level, mastery_1_10, updated_at)
		VALUES (:user_id, :level, :mastery_1_10, :updated_at)
		ON CONFLICT(user_id, level) DO UPDATE SET
			mastery_1_10 = excluded.mastery_1_10,
			updated_at = excluded.updated_at`,
		masteryRow{UserID: userID, Level: level, Score: score, UpdatedAt: time.Now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("upsert mastery: %w", err)
	}
	return nil
}
