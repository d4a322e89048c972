package mastery

import "context"

// Store is the persisted mastery table: one score per (user, level).
// Finalize performs a read-modify-write through it; callers that may race on
// the same user must hand in a Store bound to a single transaction.
type Store interface {
	// MasteryScore returns the stored score, or ok=false if none exists.
	MasteryScore(ctx context.Context, userID string, level int) (score int, ok bool, err error)

	// UpsertMastery inserts or overwrites the score for (userID, level).
	UpsertMastery(ctx context.Context, userID string, level, score int) error
}
