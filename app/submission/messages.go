package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/mpraski/competitor-form/app/ratelimit"
	"github.com/mpraski/competitor-form/app/validation"
	"github.com/mpraski/competitor-form/app/webhook"
)

const (
	msgSuccess   = "Analysis started successfully!"
	msgTimeout   = "Request timeout. Please try again."
	msgTransport = "Error connecting to webhook"
	msgBusy      = "A request is already in progress. Please wait."
	msgUnknown   = "An unexpected error occurred. Please try again."
)

func (c *Controller) message(err error) string {
	var rej *webhook.RejectedError

	switch {
	case errors.Is(err, validation.ErrEmptyInput):
		return "Please enter at least one valid competitor/brand name for content analysis"
	case errors.Is(err, validation.ErrTooLong):
		return fmt.Sprintf("Competitor names must be %d characters or less", c.config.Options.MaxNameLength)
	case errors.Is(err, validation.ErrDuplicate):
		return "Please enter different competitors (no duplicates)"
	case errors.Is(err, validation.ErrInvalidSelection):
		return "Invalid selection detected"
	case errors.Is(err, ratelimit.ErrRateLimited):
		return fmt.Sprintf(
			"Rate limit exceeded. Please wait before making another request (max %d requests per %s, %s between requests).",
			c.config.RateLimit.Limit, per(c.config.RateLimit.Window), span(c.config.RateLimit.MinInterval),
		)
	case errors.Is(err, ErrBusy):
		return msgBusy
	case errors.Is(err, webhook.ErrTimeout):
		return msgTimeout
	case errors.As(err, &rej):
		return fmt.Sprintf("Server error (status %d). Please try again later.", rej.StatusCode)
	case errors.Is(err, webhook.ErrTransport):
		return msgTransport
	}

	return msgUnknown
}

func per(d time.Duration) string {
	switch d {
	case time.Hour:
		return "hour"
	case time.Minute:
		return "minute"
	}

	return span(d)
}

func span(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "1 minute"
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}

	return fmt.Sprintf("%d seconds", ratelimit.CeilSeconds(d))
}
