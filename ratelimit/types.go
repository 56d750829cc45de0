package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

var ErrThrottled = errors.New("too many requests")

type ThrottledError struct {
	ClientID   string
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many requests from %s, retry after %s", e.ClientID, e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// RetryAfterSeconds rounds the wait up to whole seconds for the Retry-After
// response header.
func (e *ThrottledError) RetryAfterSeconds() int {
	seconds := int((e.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
