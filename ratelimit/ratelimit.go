package ratelimit

import (
	"sync"
	"time"

	"github.com/meghashyamc/askthat/logger"
)

// Sweep idle clients once the map grows past this many entries.
const (
	sweepThreshold   = 1024
	idleWindowFactor = 10
)

type clientState struct {
	timestamps   []time.Time
	blocked      bool
	blockedUntil time.Time
	lastSeen     time.Time
}

// Limiter admits requests per client identity using a sliding window. A
// client that exceeds the limit is blocked outright for one full window, then
// starts over with a clean history.
type Limiter struct {
	logger      logger.Logger
	window      time.Duration
	maxRequests int

	mu      sync.Mutex
	clients map[string]*clientState

	now func() time.Time
}

func New(logger logger.Logger, window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		logger:      logger,
		window:      window,
		maxRequests: maxRequests,
		clients:     make(map[string]*clientState),
		now:         time.Now,
	}
}

// Admit records the request and returns nil, or returns a ThrottledError
// carrying the time the client should wait before retrying. The check and the
// record are a single atomic step per client.
func (l *Limiter) Admit(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	state, ok := l.clients[clientID]
	if !ok {
		state = &clientState{}
		l.clients[clientID] = state
		l.maybeSweep(now)
	}
	state.lastSeen = now

	if state.blocked {
		if now.Before(state.blockedUntil) {
			return &ThrottledError{
				ClientID:   clientID,
				RetryAfter: state.blockedUntil.Sub(now),
			}
		}
		// Cooldown elapsed: the history resets and this request is admitted.
		state.blocked = false
		state.timestamps = state.timestamps[:0]
	}

	cutoff := now.Add(-l.window)
	kept := state.timestamps[:0]
	for _, ts := range state.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	state.timestamps = kept

	if len(state.timestamps) >= l.maxRequests {
		state.blocked = true
		state.blockedUntil = now.Add(l.window)
		l.logger.Warn("client exceeded rate limit, blocking", "client", clientID, "window", l.window.String())
		return &ThrottledError{
			ClientID:   clientID,
			RetryAfter: l.window,
		}
	}

	state.timestamps = append(state.timestamps, now)

	return nil
}

// maybeSweep drops clients idle for many windows so the per-client map cannot
// grow without bound. Callers must hold the mutex.
func (l *Limiter) maybeSweep(now time.Time) {
	if len(l.clients) < sweepThreshold {
		return
	}

	idleCutoff := now.Add(-time.Duration(idleWindowFactor) * l.window)
	for clientID, state := range l.clients {
		if state.lastSeen.Before(idleCutoff) {
			delete(l.clients, clientID)
		}
	}
}
