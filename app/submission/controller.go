package submission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/mpraski/competitor-form/app/ratelimit"
	"github.com/mpraski/competitor-form/app/session"
	"github.com/mpraski/competitor-form/app/validation"
	"github.com/mpraski/competitor-form/app/webhook"
	log "github.com/sirupsen/logrus"
)

type (
	Admitter interface {
		TryAdmit(context.Context, time.Time) ratelimit.Result
	}

	Sender interface {
		Send(context.Context, time.Duration, webhook.Payload) error
	}

	// Fields are the raw form values as the user entered them.
	Fields struct {
		Competitors []string
		Country     string
		Status      string
		UserAgent   string
	}

	Config struct {
		Timeout   time.Duration
		Options   validation.Options
		RateLimit ratelimit.Config
	}

	Outcome struct {
		Success  bool
		Message  string
		Category string
		Err      error
		// Admission is set once the rate limiter was consulted.
		Admission *ratelimit.Result
	}

	Controller struct {
		config    Config
		limiter   Admitter
		sender    Sender
		token     *session.Token
		presenter Presenter
		now       func() time.Time
		busy      atomic.Bool
	}

	Option func(*Controller)
)

const maxUserAgent = 100

var ErrBusy = errors.New("submission already in progress")

func WithPresenter(p Presenter) Option {
	return func(c *Controller) { c.presenter = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(
	config Config,
	limiter Admitter,
	sender Sender,
	token *session.Token,
	opts ...Option,
) (*Controller, error) {
	if limiter == nil || sender == nil || token == nil {
		return nil, fmt.Errorf("limiter, sender and token are required")
	}

	if config.Timeout <= 0 {
		config.Timeout = webhook.DefaultTimeout
	}

	if config.Options.MaxCompetitors == 0 {
		config.Options = validation.DefaultOptions()
	}

	c := &Controller{
		config:    config,
		limiter:   limiter,
		sender:    sender,
		token:     token,
		presenter: nopPresenter{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Controller) Busy() bool { return c.busy.Load() }

func (c *Controller) Token() string { return c.token.Current() }

// Submit runs validation, admission and delivery in that order. Validation
// failures consume nothing; once admitted the quota stays spent whatever the
// webhook does.
func (c *Controller) Submit(ctx context.Context, f Fields) Outcome {
	c.presenter.ClearMessages()

	if !c.busy.CompareAndSwap(false, true) {
		return c.fail(ErrBusy, CategoryError, nil)
	}

	defer c.busy.Store(false)

	competitors := c.sanitize(f.Competitors)

	log.WithField("competitors", competitors).Debug("sanitized competitors")

	form, err := c.config.Options.ValidateForm(competitors, f.Country, f.Status)
	if err != nil {
		return c.fail(err, CategoryError, nil)
	}

	now := c.now()

	res := c.limiter.TryAdmit(ctx, now)
	if res.State != ratelimit.Allow {
		return c.fail(ratelimit.ErrRateLimited, CategoryRateLimit, &res)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	p := webhook.Payload{
		Competitors:  form.Competitors,
		Country:      form.Country,
		Status:       form.Status,
		SessionToken: c.token.Current(),
		Timestamp:    now.UnixMilli(),
		UserAgent:    truncate(f.UserAgent, maxUserAgent),
	}

	log.WithFields(log.Fields{
		"competitors": p.Competitors,
		"country":     p.Country,
		"status":      p.Status,
		"has_token":   p.SessionToken != "",
	}).Info("sending submission")

	if err := c.sender.Send(ctx, c.config.Timeout, p); err != nil {
		log.WithError(err).Warn("submission failed")
		return c.fail(err, CategoryError, &res)
	}

	c.token.Rotate(c.now())
	c.presenter.ReportSuccess(msgSuccess)

	return Outcome{Success: true, Message: msgSuccess, Admission: &res}
}

// Reset clears any shown message. Rate-limit history is left alone.
func (c *Controller) Reset() {
	c.presenter.ClearMessages()
}

func (c *Controller) fail(err error, category string, res *ratelimit.Result) Outcome {
	m := c.message(err)
	c.presenter.ReportError(m, category)

	return Outcome{Message: m, Category: category, Err: err, Admission: res}
}

func (c *Controller) sanitize(raw []string) []string {
	if len(raw) > c.config.Options.MaxCompetitors {
		raw = raw[:c.config.Options.MaxCompetitors]
	}

	out := make([]string, 0, len(raw))

	for _, r := range raw {
		if s := validation.Sanitize(r); s != "" {
			out = append(out, s)
		}
	}

	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
