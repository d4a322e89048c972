package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/laesemaskine/internal/catalog"
	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/mastery"
	"github.com/abhisek/laesemaskine/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func intp(n int) *int { return &n }

func levelCatalog(level, n int) *catalog.Catalog {
	p := &catalog.Payload{Version: "test"}
	for i := 1; i <= n; i++ {
		p.Words = append(p.Words, catalog.Word{ID: i, Ord: "hund", Level: intp(level)})
	}
	return catalog.New(p)
}

// recordTen stores 8 correct and 2 wrong attempts.
func recordTen(t *testing.T, s *Store, sessionID string) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		a := session.Attempt{
			WordID:         i,
			Expected:       "hund",
			Recognized:     "hund",
			ResponseTimeMs: intp(400),
			VisibleMs:      intp(2000),
		}
		if i > 8 {
			a.Expected = "hunde"
		}
		require.NoError(t, s.RecordAttempt(ctx, sessionID, session.Evaluate(a)))
	}
}

type failingLookup struct{}

func (failingLookup) WordMetadata(int) (catalog.Metadata, error) {
	return catalog.Metadata{}, errors.New("catalog unavailable")
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"lm_sessions", "lm_session_words", "lm_mastery", "lm_disputes"} {
		var name string
		err := s.DB().Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.StartSession(context.Background(), "elev-1", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	sess, err := s.Session(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "elev-1", sess.UserID)
}

func TestStartSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx, "elev-1", "after_test")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.FeedbackAfterTest, sess.FeedbackMode)
	assert.False(t, sess.Finished())
	assert.Nil(t, sess.Score)

	id, err = s.StartSession(ctx, "elev-1", "sometimes")
	require.NoError(t, err)
	sess, err = s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.FeedbackPerWord, sess.FeedbackMode)

	_, err = s.StartSession(ctx, "", "per_word")
	assert.ErrorIs(t, err, mastery.ErrMissingUser)
}

func TestRecordAttemptUpdatesTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)

	recordTen(t, s, id)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.Totals{TotalWords: 10, CorrectTotal: 8}, sess.Totals)
}

func TestRecordAttemptUnknownSession(t *testing.T) {
	s := openTestStore(t)
	err := s.RecordAttempt(context.Background(), "nope", session.Evaluate(session.Attempt{Expected: "a", Recognized: "a"}))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinishSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	words := levelCatalog(3, 10)

	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, id)

	out, err := s.FinishSession(ctx, id, intp(3), words)
	require.NoError(t, err)
	assert.Equal(t, mastery.StatusOK, out.Status)
	require.NotNil(t, out.Baseline)
	assert.Equal(t, 8, *out.Baseline)
	assert.Equal(t, map[int]int{3: 8}, out.Levels)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.True(t, sess.Finished())
	assert.Equal(t, mastery.StatusOK, sess.Status)
	require.NotNil(t, sess.Score)
	assert.Equal(t, 80.0, *sess.Score)
	require.NotNil(t, sess.EstimatedLevel)
	assert.Equal(t, 3, *sess.EstimatedLevel)

	recs, err := s.Mastery(ctx, "elev-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].Level)
	assert.Equal(t, 8, recs[0].Score)
}

func TestFinishSessionSmoothsAcrossSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	words := levelCatalog(2, 10)

	// First session: every word wrong, no timing. Candidate = round(0.7*0 + 0.3*0.5) = 2.
	first, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		a := session.Attempt{WordID: i, Expected: "hunde", Recognized: "hund"}
		require.NoError(t, s.RecordAttempt(ctx, first, session.Evaluate(a)))
	}
	out, err := s.FinishSession(ctx, first, nil, words)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2: 2}, out.Levels)

	// Second session: candidate 8, smoothed round(0.7*2 + 0.3*8) = round(3.8) = 4.
	second, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, second)
	out, err = s.FinishSession(ctx, second, nil, words)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2: 4}, out.Levels)

	recs, err := s.Mastery(ctx, "elev-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 4, recs[0].Score)
}

func TestFinishSessionPartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, id)

	out, err := s.FinishSession(ctx, id, intp(5), failingLookup{})
	require.NoError(t, err)
	assert.Equal(t, mastery.StatusPartial, out.Status)
	assert.Error(t, out.Reason)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.True(t, sess.Finished())
	assert.Equal(t, mastery.StatusPartial, sess.Status)
	assert.Nil(t, sess.Score)
	assert.Nil(t, sess.Accuracy)
	assert.Nil(t, sess.Speed)

	// The baseline survives the failed refinement.
	recs, err := s.Mastery(ctx, "elev-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 5, recs[0].Level)
	assert.Equal(t, 8, recs[0].Score)
}

func TestFinishSessionRecomputesZeroTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, id)
	_, err = s.DB().Exec(`UPDATE lm_sessions SET total_words = 0, correct_total = 0 WHERE id = ?`, id)
	require.NoError(t, err)

	out, err := s.FinishSession(ctx, id, nil, levelCatalog(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Metrics.TotalWords)
	assert.Equal(t, 8, out.Metrics.CorrectTotal)
}

func TestFinishedSessionRejectsWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	words := levelCatalog(1, 10)

	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	_, err = s.FinishSession(ctx, id, nil, words)
	require.NoError(t, err)

	err = s.RecordAttempt(ctx, id, session.Evaluate(session.Attempt{WordID: 1, Expected: "hund", Recognized: "hund"}))
	assert.ErrorIs(t, err, ErrSessionFinished)

	_, err = s.FinishSession(ctx, id, nil, words)
	assert.ErrorIs(t, err, ErrSessionFinished)

	_, err = s.FinishSession(ctx, "missing", nil, words)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionDetailRecomputesDiagnosis(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)

	// Stored without a diagnosis; the detail view classifies again.
	rec := session.Record{
		Attempt: session.Attempt{WordID: 7, Expected: "hunde", Recognized: "hund", WordLevel: intp(4)},
	}
	require.NoError(t, s.RecordAttempt(ctx, id, rec))

	d, err := s.SessionDetail(ctx, id)
	require.NoError(t, err)
	require.Len(t, d.Attempts, 1)
	got := d.Attempts[0]
	assert.Equal(t, 7, got.WordID)
	assert.Equal(t, diagnosis.ErrorMissingEnding, got.ErrorType())
	assert.Equal(t, "Du mangler endelsen -e.", got.Diagnosis.MessageDetail)
	require.NotNil(t, got.WordLevel)
	assert.Equal(t, 4, *got.WordLevel)
	assert.Nil(t, got.ResponseTimeMs)

	_, err = s.SessionDetail(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUserAttemptsOnlyFinishedSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	words := levelCatalog(1, 10)

	done, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, done)
	_, err = s.FinishSession(ctx, done, nil, words)
	require.NoError(t, err)

	open, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	recordTen(t, s, open)

	other, err := s.StartSession(ctx, "elev-2", "")
	require.NoError(t, err)
	recordTen(t, s, other)
	_, err = s.FinishSession(ctx, other, nil, words)
	require.NoError(t, err)

	recs, err := s.UserAttempts(ctx, "elev-1")
	require.NoError(t, err)
	require.Len(t, recs, 10)

	var wrong int
	for _, r := range recs {
		if !r.Correct {
			wrong++
			assert.Equal(t, diagnosis.ErrorMissingEnding, r.ErrorType())
		}
	}
	assert.Equal(t, 2, wrong)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("LAESEMASKINE_DB", filepath.Join(dir, "env", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "env", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "env"))

	t.Setenv("LAESEMASKINE_DB", "")
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "laesemaskine", "laesemaskine.db"), p)
	assert.DirExists(t, filepath.Join(dir, "data", "laesemaskine"))
}
