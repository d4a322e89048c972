package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/laesemaskine/internal/diagnosis"
	"github.com/abhisek/laesemaskine/internal/session"
)

// disputedSession stores hunde/hund and hund/hund and returns the session id
// with the stored attempt ids.
func disputedSession(t *testing.T, s *Store) (string, []int64) {
	t.Helper()
	ctx := context.Background()
	id, err := s.StartSession(ctx, "elev-1", "")
	require.NoError(t, err)
	for _, a := range []session.Attempt{
		{WordID: 1, Expected: "hunde", Recognized: "hund"},
		{WordID: 2, Expected: "hund", Recognized: "hund"},
	} {
		require.NoError(t, s.RecordAttempt(ctx, id, session.Evaluate(a)))
	}
	d, err := s.SessionDetail(ctx, id)
	require.NoError(t, err)
	require.Len(t, d.AttemptIDs, 2)
	return id, d.AttemptIDs
}

func TestCreateDisputeCopiesAttempt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)

	did, err := s.CreateDispute(ctx, sid, ids[0], "  jeg sagde hunde  ")
	require.NoError(t, err)

	d, err := s.Dispute(ctx, did)
	require.NoError(t, err)
	assert.Equal(t, ids[0], d.AttemptID)
	assert.Equal(t, sid, d.SessionID)
	assert.Equal(t, "elev-1", d.UserID)
	assert.Equal(t, "hunde", d.Expected)
	assert.Equal(t, "hund", d.Recognized)
	assert.Equal(t, "jeg sagde hunde", d.Note)
	assert.Equal(t, diagnosis.ErrorMissingEnding, d.ErrorType)
	assert.Equal(t, DisputePending, d.Status)
	assert.Nil(t, d.ReviewedAt)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestCreateDisputeBlankNoteAndCorrectAttempt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)

	did, err := s.CreateDispute(ctx, sid, ids[1], "   ")
	require.NoError(t, err)
	d, err := s.Dispute(ctx, did)
	require.NoError(t, err)
	assert.Empty(t, d.Note)
	assert.Empty(t, d.ErrorType, "correct attempt has no error type")
}

func TestCreateDisputeRejectsForeignAttempt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)
	other, _ := disputedSession(t, s)

	_, err := s.CreateDispute(ctx, other, ids[0], "")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = s.CreateDispute(ctx, sid, 9999, "")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = s.CreateDispute(ctx, "missing", ids[0], "")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestReviewDispute(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)
	did, err := s.CreateDispute(ctx, sid, ids[0], "")
	require.NoError(t, err)

	// Without an error type the copied one is kept.
	require.NoError(t, s.ReviewDispute(ctx, did, DisputeRejected, nil))
	d, err := s.Dispute(ctx, did)
	require.NoError(t, err)
	assert.Equal(t, DisputeRejected, d.Status)
	assert.Equal(t, diagnosis.ErrorMissingEnding, d.ErrorType)
	require.NotNil(t, d.ReviewedAt)

	et := diagnosis.ErrorNearMatch
	require.NoError(t, s.ReviewDispute(ctx, did, DisputeApproved, &et))
	d, err = s.Dispute(ctx, did)
	require.NoError(t, err)
	assert.Equal(t, DisputeApproved, d.Status)
	assert.Equal(t, diagnosis.ErrorNearMatch, d.ErrorType)
}

func TestReviewDisputeValidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)
	did, err := s.CreateDispute(ctx, sid, ids[0], "")
	require.NoError(t, err)

	err = s.ReviewDispute(ctx, did, DisputeStatus("maybe"), nil)
	assert.ErrorIs(t, err, ErrInvalidDisputeStatus)

	bogus := diagnosis.ErrorType("typo")
	err = s.ReviewDispute(ctx, did, DisputeApproved, &bogus)
	assert.ErrorIs(t, err, ErrInvalidErrorType)

	err = s.ReviewDispute(ctx, did+100, DisputeApproved, nil)
	assert.ErrorIs(t, err, ErrDisputeNotFound)

	d, err := s.Dispute(ctx, did)
	require.NoError(t, err)
	assert.Equal(t, DisputePending, d.Status, "failed reviews leave the dispute untouched")

	_, err = s.Dispute(ctx, did+100)
	assert.ErrorIs(t, err, ErrDisputeNotFound)
}

func TestDisputesFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sid, ids := disputedSession(t, s)

	first, err := s.CreateDispute(ctx, sid, ids[0], "")
	require.NoError(t, err)
	second, err := s.CreateDispute(ctx, sid, ids[1], "")
	require.NoError(t, err)
	require.NoError(t, s.ReviewDispute(ctx, first, DisputeApproved, nil))

	all, err := s.Disputes(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].ID, "newest first")
	assert.Equal(t, first, all[1].ID)

	pending, err := s.Disputes(ctx, DisputePending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)

	_, err = s.Disputes(ctx, DisputeStatus("open"))
	assert.ErrorIs(t, err, ErrInvalidDisputeStatus)
}

func TestParseDisputeStatus(t *testing.T) {
	st, err := ParseDisputeStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, DisputeApproved, st)

	_, err = ParseDisputeStatus("send_to_ai")
	assert.ErrorIs(t, err, ErrInvalidDisputeStatus)
}
