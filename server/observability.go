package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hellofresh/health-go/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Check struct {
	Name    string
	Timeout time.Duration
	// Optional checks report as degraded instead of unavailable.
	Optional bool
	Check    func(context.Context) error
}

const defaultCheckTimeout = 2 * time.Second

func NewObservability(config Config, component, version string, checks ...Check) (*Server, error) {
	cfgs := make([]health.Config, 0, len(checks))

	for _, c := range checks {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultCheckTimeout
		}

		cfgs = append(cfgs, health.Config{
			Name:      c.Name,
			Timeout:   timeout,
			SkipOnErr: c.Optional,
			Check:     c.Check,
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: component, Version: version}),
		health.WithChecks(cfgs...),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create health checker")
	}

	router := http.NewServeMux()
	router.Handle("/healthz", h.Handler())
	router.Handle("/metrics", promhttp.Handler())

	return newServer("observability", config, router), nil
}
