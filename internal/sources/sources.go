package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"songdeck/internal/track"
)

var (
	// ErrNotFound means the source authoritatively has no match. Terminal for
	// that source on that track.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable covers network failures, timeouts, rate limiting, and
	// server errors. Retried, then skipped.
	ErrUnavailable = errors.New("source unavailable")
	// ErrInsufficientQuery means the source needs hints (title, artist) that
	// no earlier source supplied.
	ErrInsufficientQuery = errors.New("insufficient query")
)

// Query is what an adapter receives for one track. Title and Artist are hints
// gathered from higher-priority sources; secondary services search by them.
type Query struct {
	Identifier track.Identifier
	Title      string
	Artist     string
}

// HasHints reports whether the query carries title and artist hints.
func (q Query) HasHints() bool {
	return strings.TrimSpace(q.Title) != "" && strings.TrimSpace(q.Artist) != ""
}

// Adapter is the capability every metadata source implements.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q Query) (track.RawFact, error)
}

// StatusError records a non-success HTTP response.
type StatusError struct {
	Source     string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned http %d", e.Source, e.StatusCode)
}

// Unwrap classifies the status so callers can use errors.Is with the
// package sentinels.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return nil
	}
}

// CheckResponse converts an HTTP response status into a StatusError. It
// returns nil for 2xx responses.
func CheckResponse(source string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"))
	return &StatusError{Source: source, StatusCode: resp.StatusCode, RetryAfter: retryAfter}
}

// Unavailable wraps a transport error so it classifies as ErrUnavailable.
func Unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrUnavailable, err)
}

// ParseRetryAfter understands both delta-seconds and HTTP-date values.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}
	return 0, false
}

// PlausibleYear bounds release years: nothing was recorded before 1877 and a
// release cannot be dated more than a year ahead.
func PlausibleYear(year int, now time.Time) bool {
	return year >= 1877 && year <= now.Year()+1
}

// ParseYear extracts the leading four-digit year from dates like
// "1971", "1971-11", or "1971-11-08".
func ParseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
