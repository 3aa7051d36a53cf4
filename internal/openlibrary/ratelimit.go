package openlibrary

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// MinInterval is the minimum spacing between consecutive search requests.
// Open Library allows roughly one search per second per client.
const MinInterval = time.Second

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetriable reports whether err represents a transient condition (rate
// limits, timeouts, connection errors) rather than a definitive miss.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	for _, code := range []string{"502", "503", "504"} {
		if strings.Contains(message, code) {
			return true
		}
	}
	for _, token := range []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
