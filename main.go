package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mpraski/competitor-form/app/logging"
	"github.com/mpraski/competitor-form/app/ratelimit"
	"github.com/mpraski/competitor-form/app/secret"
	"github.com/mpraski/competitor-form/app/session"
	"github.com/mpraski/competitor-form/app/store"
	"github.com/mpraski/competitor-form/app/submission"
	"github.com/mpraski/competitor-form/app/validation"
	"github.com/mpraski/competitor-form/app/web"
	"github.com/mpraski/competitor-form/app/webhook"
	"github.com/mpraski/competitor-form/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type input struct {
	Config  string
	Webhook struct {
		URL          string
		URLSecret    string        `split_words:"true" default:"WEBHOOK_URL"`
		SecretSource string        `split_words:"true" default:"env"`
		Project      string
		Timeout      time.Duration `default:"30s"`
	}
	Store struct {
		Type  string `default:"file"`
		Path  string `default:"competitor_form.json"`
		Key   string `default:"requests"`
		Redis struct {
			Host     string `default:"localhost"`
			Port     int    `default:"6379"`
			Password string
			DB       int
		}
	}
	RateLimit struct {
		Limit          uint64        `default:"10"`
		Window         time.Duration `default:"1h"`
		MinInterval    time.Duration `split_words:"true" default:"1m"`
		RefreshEvery   time.Duration `split_words:"true" default:"30s"`
		CountdownEvery time.Duration `split_words:"true" default:"1s"`
	} `split_words:"true"`
	Ingress struct {
		RPS   float64 `default:"5"`
		Burst int     `default:"10"`
	}
	Server struct {
		Address         string        `default:":8080"`
		ReadTimeout     time.Duration `split_words:"true" default:"5s"`
		WriteTimeout    time.Duration `split_words:"true" default:"40s"`
		IdleTimeout     time.Duration `split_words:"true" default:"15s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"30s"`
	}
	Observability struct {
		Address string `default:":9090"`
	}
	Log logging.Config
}

var (
	app     = "competitor_form"
	version = "dev"
	// Metrics
	requestsHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "competitor_form_requests_handled_total",
		Help: "The total number of handled requests",
	}, []string{"method", "path", "code"})
	requestsHandledDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "competitor_form_requests_handled_duration_seconds",
		Help:    "The histogram of handled request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "competitor_form_submissions_total",
		Help: "The total number of form submissions by result",
	}, []string{"result"})
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	var i input
	if err := envconfig.Process(app, &i); err != nil {
		log.Fatalf("failed to load input: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeLog, err := logging.Setup(ctx, i.Log, os.Stdout)
	if err != nil {
		log.Fatalf("failed to set up logging: %v\n", err)
	}

	if code := finish(run(ctx, &i), closeLog); code != 0 {
		os.Exit(code)
	}
}

// finish reports the outcome of run and flushes the logging hooks before the
// process exits. log.Fatal would skip the flush.
func finish(err error, closeLog func()) int {
	defer closeLog()

	if err != nil {
		log.Errorf("%v\n", err)
		return 1
	}

	log.Println("server stopped")

	return 0
}

func run(ctx context.Context, i *input) error {
	options, err := validation.ParseOptions(strings.NewReader(i.Config))
	if err != nil {
		return fmt.Errorf("failed to parse form options: %w", err)
	}

	cors, err := web.ParseCORS(strings.NewReader(i.Config))
	if err != nil {
		return fmt.Errorf("failed to parse cors config: %w", err)
	}

	url, err := webhookURL(ctx, i)
	if err != nil {
		return err
	}

	backend, closeBackend, err := newBackend(i)
	if err != nil {
		return err
	}
	defer closeBackend()

	timestamps := store.NewTimestamps(backend, i.Store.Key, i.RateLimit.Window)

	limitConfig := ratelimit.Config{
		Limit:       i.RateLimit.Limit,
		Window:      i.RateLimit.Window,
		MinInterval: i.RateLimit.MinInterval,
	}

	limiter, err := ratelimit.New(timestamps, limitConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	display := web.NewDisplay()

	controller, err := submission.New(
		submission.Config{Timeout: i.Webhook.Timeout, Options: options, RateLimit: limitConfig},
		limiter,
		webhook.NewClient(url, nil),
		session.NewToken(session.Generate, time.Now()),
		submission.WithPresenter(display),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize submission controller: %w", err)
	}

	var (
		monitor  = web.NewMonitor(limiter, display, i.RateLimit.RefreshEvery, i.RateLimit.CountdownEvery)
		throttle = web.NewThrottle(i.Ingress.RPS, i.Ingress.Burst)
		handler  = web.NewHandler(controller, monitor, display, options, submissionsTotal)
	)

	serverConfig := server.Config{
		Address:         i.Server.Address,
		ReadTimeout:     i.Server.ReadTimeout,
		WriteTimeout:    i.Server.WriteTimeout,
		IdleTimeout:     i.Server.IdleTimeout,
		ShutdownTimeout: i.Server.ShutdownTimeout,
	}

	public := server.NewPublic(serverConfig, handler.Router(
		cors.Middleware,
		throttle.Middleware,
		web.WithMetrics(requestsHandledTotal, requestsHandledDuration),
		web.WithLogging(),
	))

	observabilityConfig := serverConfig
	observabilityConfig.Address = i.Observability.Address

	observability, err := server.NewObservability(observabilityConfig, app, version, server.Check{
		Name:     "store",
		Optional: true,
		Check:    timestamps.Ping,
	})
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return public.Run(ctx) })
	group.Go(func() error { return observability.Run(ctx) })
	group.Go(func() error { return monitor.Run(ctx) })
	group.Go(func() error { return throttle.Run(ctx) })

	return group.Wait()
}

func webhookURL(ctx context.Context, i *input) (string, error) {
	if i.Webhook.URL != "" {
		return i.Webhook.URL, nil
	}

	var source secret.Source

	switch i.Webhook.SecretSource {
	case "env":
		source = secret.NewPrefixedEnvSource(app)
	case "file":
		source = secret.NewFileSource()
	case "gsm":
		m, err := secret.NewGoogleSecretManager(ctx, i.Webhook.Project)
		if err != nil {
			return "", fmt.Errorf("failed to initialize secret manager: %w", err)
		}
		defer m.Close()

		source = m
	default:
		return "", fmt.Errorf("%w: %s", secret.ErrUnknownSource, i.Webhook.SecretSource)
	}

	url, err := secret.String(ctx, secret.NewBackoffSource(3, time.Second, source), i.Webhook.URLSecret)
	if err != nil {
		return "", fmt.Errorf("failed to resolve webhook url: %w", err)
	}

	return url, nil
}

func newBackend(i *input) (store.Backend, func(), error) {
	switch i.Store.Type {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "file":
		return store.NewFileStore(i.Store.Path), func() {}, nil
	case "redis":
		r := store.NewRedisStore(store.RedisConfig{
			Host:     i.Store.Redis.Host,
			Port:     i.Store.Redis.Port,
			Password: i.Store.Redis.Password,
			DB:       i.Store.Redis.DB,
		})

		return r, func() {
			if err := r.Close(); err != nil {
				log.WithError(err).Warn("failed to close redis client")
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown store type %q", i.Store.Type)
}
