package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsWithinRestriction(t *testing.T) {

	rl := CreateRateLimiter([]Restriction{{Requests: 2, Duration: time.Second}})

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiterDelaysWhenRestricted(t *testing.T) {

	rl := CreateRateLimiter([]Restriction{{Requests: 1, Duration: 200 * time.Millisecond}})

	require.NoError(t, rl.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiterCooldown(t *testing.T) {

	rl := CreateRateLimiter(nil)
	rl.Cooldown(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiterCooldownLaterDeadlineWins(t *testing.T) {

	rl := CreateRateLimiter(nil)
	rl.Cooldown(200 * time.Millisecond)
	rl.Cooldown(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiterContextCancelled(t *testing.T) {

	rl := CreateRateLimiter(nil)
	rl.Cooldown(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRestrictionAnalyse(t *testing.T) {

	restriction := Restriction{Requests: 2, Duration: time.Second}

	// Nothing in the history, no wait
	assert.Zero(t, restriction.Analyse(nil))

	// One recent request, still room
	now := time.Now()
	assert.Zero(t, restriction.Analyse([]time.Time{now.Add(-100 * time.Millisecond)}))

	// Window full, the caller has to wait for the oldest to age out
	history := []time.Time{now.Add(-600 * time.Millisecond), now.Add(-100 * time.Millisecond)}
	wait := restriction.Analyse(history)
	assert.Greater(t, wait, 300*time.Millisecond)
	assert.LessOrEqual(t, wait, 400*time.Millisecond)

	// Old requests do not count
	history = []time.Time{now.Add(-2 * time.Second), now.Add(-100 * time.Millisecond)}
	assert.Zero(t, restriction.Analyse(history))
}
