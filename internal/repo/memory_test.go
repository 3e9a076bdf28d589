package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOtpRepo_ConsumeMostRecentWins(t *testing.T) {
	r := NewMemoryOtpRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := base
	r.Now = func() time.Time { return clock }

	_, err := r.Create(ctx, "user@test.com", "111111", base.Add(10*time.Minute))
	require.NoError(t, err)

	clock = base.Add(time.Minute)
	_, err = r.Create(ctx, "user@test.com", "222222", base.Add(11*time.Minute))
	require.NoError(t, err)

	// Consuming the newer code deletes the older row too.
	require.NoError(t, r.Consume(ctx, "user@test.com", "222222"))
	assert.ErrorIs(t, r.Consume(ctx, "user@test.com", "111111"), ErrNoMatchingCode)

	count, err := r.CountUnconsumed(ctx, "user@test.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryOtpRepo_ConsumeIsSingleUse(t *testing.T) {
	r := NewMemoryOtpRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, "user@test.com", "123456", time.Now().Add(10*time.Minute))
	require.NoError(t, err)

	require.NoError(t, r.Consume(ctx, "user@test.com", "123456"))
	assert.ErrorIs(t, r.Consume(ctx, "user@test.com", "123456"), ErrNoMatchingCode)
}

func TestMemoryOtpRepo_ExpiredIgnored(t *testing.T) {
	r := NewMemoryOtpRepo()
	ctx := context.Background()

	_, err := r.Create(ctx, "user@test.com", "123456", time.Now().Add(-time.Second))
	require.NoError(t, err)

	assert.ErrorIs(t, r.Consume(ctx, "user@test.com", "123456"), ErrNoMatchingCode)

	// DeleteExpired is housekeeping; the row is gone afterwards either way.
	require.NoError(t, r.DeleteExpired(ctx, "user@test.com"))
	count, err := r.CountUnconsumed(ctx, "user@test.com")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
