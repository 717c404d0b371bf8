package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	keys     map[string]bool
	setNXErr error
	lastTTL  time.Duration
}

func newFakeStore() *fakeStore { return &fakeStore{keys: map[string]bool{}} }

func (f *fakeStore) Get(context.Context, string) (string, error) { return "", nil }

func (f *fakeStore) Set(_ context.Context, key string, _ any, _ time.Duration) error {
	f.keys[key] = true
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	f.lastTTL = ttl
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "pep:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return nil
}

func TestClaimOnlyOnce(t *testing.T) {
	store := newFakeStore()
	guard, err := NewGuard(store, 24*time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New()

	first, err := guard.Claim(ctx, "notifications", eventID)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, store.keys["pep:idempotency:evt:notifications:"+eventID.String()])
	assert.Equal(t, 24*time.Hour, store.lastTTL)

	second, err := guard.Claim(ctx, "notifications", eventID)
	require.NoError(t, err)
	assert.False(t, second)

	other, err := guard.Claim(ctx, "reports", eventID)
	require.NoError(t, err)
	assert.True(t, other, "claims are scoped per consumer")
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := newFakeStore()
	guard, err := NewGuard(store, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New()
	_, err = guard.Claim(ctx, "notifications", eventID)
	require.NoError(t, err)
	require.NoError(t, guard.Release(ctx, "notifications", eventID))

	again, err := guard.Claim(ctx, "notifications", eventID)
	require.NoError(t, err)
	assert.True(t, again)
}

func TestGuardValidation(t *testing.T) {
	_, err := NewGuard(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewGuard(newFakeStore(), 0)
	assert.Error(t, err)

	guard, err := NewGuard(newFakeStore(), time.Hour)
	require.NoError(t, err)
	_, err = guard.Claim(context.Background(), "", uuid.New())
	assert.Error(t, err)
	_, err = guard.Claim(context.Background(), "notifications", uuid.Nil)
	assert.Error(t, err)

	failing := newFakeStore()
	failing.setNXErr = errors.New("redis down")
	guard, err = NewGuard(failing, time.Hour)
	require.NoError(t, err)
	_, err = guard.Claim(context.Background(), "notifications", uuid.New())
	assert.Error(t, err)
}
