package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// The rate limiter guards all outbound requests to the provider.
// It enforces a set of client-side restrictions (n requests per window)
// and a shared cooldown that the server can impose by answering 429.
// All workers of a leaderboard request consult the same limiter, so a
// cooldown received by one of them throttles every in-flight and
// future request, not just the one that was answered
type RateLimiter struct {
	mu           sync.Mutex
	restrictions []Restriction
	history      []time.Time
	duration     time.Duration // Longest restriction window, used to trim the history
	notBefore    time.Time     // Server-imposed cooldown deadline
}

func CreateRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := RateLimiter{}
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	return &rl
}

// Block until a request is allowed, then record it in the history.
// Returns early with the context error if the context expires first
func (rl *RateLimiter) Wait(ctx context.Context) error {

	for {
		wait := rl.analyse()
		if wait == 0 {
			return nil
		}
		log.Debug().Msg(fmt.Sprintf("Request delayed %.2f seconds by rate limiter", wait.Seconds()))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Impose a cooldown. Nobody is allowed to issue a request until the
// provided duration has elapsed. A later deadline always wins
func (rl *RateLimiter) Cooldown(duration time.Duration) {

	rl.mu.Lock()
	defer rl.mu.Unlock()

	deadline := time.Now().Add(duration)
	if deadline.After(rl.notBefore) {
		rl.notBefore = deadline
	}
}

// Check the restrictions and the cooldown, and return how long the
// caller has to wait. A wait of zero means the request was allowed
// and has been recorded in the history
func (rl *RateLimiter) analyse() time.Duration {

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.trim()

	currentTime := time.Now()
	var wait time.Duration
	if rl.notBefore.After(currentTime) {
		wait = rl.notBefore.Sub(currentTime)
	}
	for _, restriction := range rl.restrictions {
		if restrictionWait := restriction.Analyse(rl.history); restrictionWait > wait {
			wait = restrictionWait
		}
	}

	if wait == 0 {
		rl.history = append(rl.history, currentTime)
	}
	return wait
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim() {
	currentTime := time.Now()
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// Times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) > rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}
