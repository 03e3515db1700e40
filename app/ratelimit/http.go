package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

const (
	rateLimitingState         = "Rate-Limiting-State"
	rateLimitingRemaining     = "Rate-Limiting-Remaining"
	rateLimitingResetMinutes  = "Rate-Limiting-Reset-Minutes"
	rateLimitingRetryAt       = "Rate-Limiting-Retry-At"
	rateLimitingTotalRequests = "Rate-Limiting-Total-Requests"
)

// WriteResultHeaders exposes an admission decision on a response.
func WriteResultHeaders(h http.Header, r Result) {
	h.Set(rateLimitingState, r.State.String())
	h.Set(rateLimitingTotalRequests, strconv.FormatUint(r.TotalRequests, 10))

	if !r.RetryAt.IsZero() {
		h.Set(rateLimitingRetryAt, r.RetryAt.UTC().Format(time.RFC3339))
		h.Set("Retry-After", strconv.Itoa(CeilSeconds(time.Until(r.RetryAt))))
	}
}

// WriteStatusHeaders exposes the display counters on a response.
func WriteStatusHeaders(h http.Header, s Status) {
	h.Set(rateLimitingRemaining, strconv.Itoa(s.Remaining))
	h.Set(rateLimitingResetMinutes, strconv.Itoa(s.ResetInMinutes))

	if !s.CooldownUntil.IsZero() {
		h.Set(rateLimitingRetryAt, s.CooldownUntil.UTC().Format(time.RFC3339))
	}
}
