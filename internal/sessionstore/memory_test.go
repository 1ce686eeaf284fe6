package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-receipt-ingest/internal/domain/session"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := &session.Session{
		ChatID:        42,
		State:         session.StateCollecting,
		Candidate:     &transaction.Candidate{Amount: "500"},
		MissingFields: []string{"date", "reference", "sender"},
		LastActive:    time.Now(),
	}

	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, s.State, got.State)
	assert.Equal(t, s.MissingFields, got.MissingFields)
	assert.Equal(t, "500", got.Candidate.Amount)

	// The stored session is a copy; mutating the returned value must not
	// leak back into the store.
	got.State = session.StateConfirming
	again, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, session.StateCollecting, again.State)
}

func TestMemoryStore_GetReturnsDeepCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, &session.Session{
		ChatID:        42,
		State:         session.StateCollecting,
		Candidate:     &transaction.Candidate{Amount: "500"},
		MissingFields: []string{"date", "reference"},
	}))

	// Mutating the returned candidate or queue must not reach the stored
	// session without a Put.
	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	got.Candidate.Amount = "999"
	got.MissingFields[0] = "sender"

	again, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "500", again.Candidate.Amount)
	assert.Equal(t, []string{"date", "reference"}, again.MissingFields)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), 99)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, &session.Session{ChatID: 7}))
	require.NoError(t, store.Delete(ctx, 7))

	_, err := store.Get(ctx, 7)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Deleting an absent session is not an error
	assert.NoError(t, store.Delete(ctx, 7))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &session.Session{LastActive: now.Add(-6 * time.Minute)}

	assert.True(t, s.Expired(now, 5*time.Minute))
	assert.False(t, s.Expired(now, 10*time.Minute))

	s.Touch(now)
	assert.False(t, s.Expired(now, 5*time.Minute))
}
