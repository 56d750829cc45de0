package ratelimit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meghashyamc/askthat/logger"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(window time.Duration, maxRequests int) (*Limiter, *time.Time) {
	limiter := New(logger.New(), window, maxRequests)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	return limiter, &now
}

func TestAdmitUnderLimit(t *testing.T) {
	assert := require.New(t)
	limiter, _ := newTestLimiter(60*time.Second, 10)

	for i := 0; i < 10; i++ {
		assert.NoError(limiter.Admit("client-a"))
	}
}

func TestEleventhRequestRejected(t *testing.T) {
	assert := require.New(t)
	limiter, _ := newTestLimiter(60*time.Second, 10)

	for i := 0; i < 10; i++ {
		assert.NoError(limiter.Admit("client-a"))
	}

	err := limiter.Admit("client-a")
	assert.Error(err)
	assert.True(errors.Is(err, ErrThrottled))

	var throttled *ThrottledError
	assert.True(errors.As(err, &throttled))
	assert.LessOrEqual(throttled.RetryAfter, 60*time.Second)
	assert.GreaterOrEqual(throttled.RetryAfterSeconds(), 1)
}

func TestConcurrentAdmitStaysWithinLimit(t *testing.T) {
	assert := require.New(t)
	limiter, _ := newTestLimiter(60*time.Second, 10)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("client-a") == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Check and record are one atomic step per client, so racing requests
	// admit exactly the allowance and nothing more.
	assert.EqualValues(10, admitted.Load())
}

func TestBlockedClientRejectedOutright(t *testing.T) {
	assert := require.New(t)
	limiter, now := newTestLimiter(60*time.Second, 10)

	for i := 0; i < 11; i++ {
		limiter.Admit("client-a")
	}

	// Halfway through the cooldown every request is still rejected, with the
	// remaining wait shrinking.
	*now = now.Add(30 * time.Second)

	err := limiter.Admit("client-a")
	var throttled *ThrottledError
	assert.True(errors.As(err, &throttled))
	assert.LessOrEqual(throttled.RetryAfter, 30*time.Second)
}

func TestBlockClearsAfterCooldown(t *testing.T) {
	assert := require.New(t)
	limiter, now := newTestLimiter(60*time.Second, 10)

	for i := 0; i < 11; i++ {
		limiter.Admit("client-a")
	}

	*now = now.Add(61 * time.Second)

	// Cooldown elapsed: the history resets and the client can use its full
	// allowance again.
	for i := 0; i < 10; i++ {
		assert.NoError(limiter.Admit("client-a"))
	}
	assert.Error(limiter.Admit("client-a"))
}

func TestClientsAreIndependent(t *testing.T) {
	assert := require.New(t)
	limiter, _ := newTestLimiter(60*time.Second, 2)

	assert.NoError(limiter.Admit("client-a"))
	assert.NoError(limiter.Admit("client-a"))
	assert.Error(limiter.Admit("client-a"))

	assert.NoError(limiter.Admit("client-b"))
}

func TestWindowSlides(t *testing.T) {
	assert := require.New(t)
	limiter, now := newTestLimiter(60*time.Second, 2)

	assert.NoError(limiter.Admit("client-a"))
	*now = now.Add(61 * time.Second)

	// The first timestamp has aged out, so two more requests fit.
	assert.NoError(limiter.Admit("client-a"))
	assert.NoError(limiter.Admit("client-a"))
}
