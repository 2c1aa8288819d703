package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBegin_FirstCallerWinsClaim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	resp, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestBegin_SecondCallerSeesInFlight(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)

	_, err = store.Begin(ctx, "pay-123", time.Minute)
	assert.ErrorIs(t, err, ErrInFlight)
}

func TestCompleteThenBeginReplaysResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)

	stored := &StoredResponse{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	require.NoError(t, store.Complete(ctx, "pay-123", stored, time.Minute))

	resp, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestReleaseMakesKeyClaimableAgain(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "pay-123"))

	resp, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestExpiredClaimIsReclaimable(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Begin(ctx, "pay-123", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	resp, err := store.Begin(ctx, "pay-123", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
