package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gopkg.in/yaml.v2"
)

// CORS answers preflights and decorates responses for browsers posting the
// form from another origin. A zero CORS is disabled and passes requests
// through untouched.
type CORS struct {
	enabled          bool
	allowCredentials bool
	allowedOrigins   []string
	allowedHeaders   []string
	allowedMethods   []string
	exposedHeaders   []string
}

type corsConfig struct {
	Enabled          *bool     `yaml:"enabled"`
	AllowCredentials *bool     `yaml:"allowCredentials"`
	AllowedOrigins   *[]string `yaml:"allowedOrigins,flow"`
	AllowedHeaders   *[]string `yaml:"allowedHeaders,flow"`
	AllowedMethods   *[]string `yaml:"allowedMethods,flow"`
	ExposedHeaders   *[]string `yaml:"exposedHeaders,flow"`
}

var (
	ErrNoAllowedOrigins = errors.New("cors enabled without allowed origins")
	ErrNoAllowedMethods = errors.New("cors enabled without allowed methods")
)

var (
	recognizedMethods = []string{http.MethodGet, http.MethodPost}
	defaultHeaders    = []string{"Content-Type", "X-Requested-With"}
	defaultExposed    = []string{
		"Retry-After",
		"Rate-Limiting-State",
		"Rate-Limiting-Remaining",
		"Rate-Limiting-Reset-Minutes",
		"Rate-Limiting-Retry-At",
		"Rate-Limiting-Total-Requests",
	}
)

// ParseCORS reads the cors section of a YAML document. A missing section
// yields a disabled CORS.
func ParseCORS(configDataSource io.Reader) (*CORS, error) {
	var c struct {
		CORS *corsConfig `yaml:"cors"`
	}

	if err := yaml.NewDecoder(configDataSource).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode cors config: %w", err)
	}

	cors := &CORS{
		allowedHeaders: canonical(defaultHeaders),
		allowedMethods: []string{http.MethodPost},
		exposedHeaders: canonical(defaultExposed),
	}

	if c.CORS == nil {
		return cors, nil
	}

	if err := cors.parse(c.CORS); err != nil {
		return nil, err
	}

	return cors, cors.validate()
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	if !c.enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !c.preflight(w, r) {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.WriteHeader(http.StatusNoContent)

			return
		}

		c.actual(w, r)
		next.ServeHTTP(w, r)
	})
}

func (c *CORS) preflight(w http.ResponseWriter, r *http.Request) bool {
	h := w.Header()
	o := r.Header.Get("Origin")

	h.Add("Vary", "Origin")
	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")

	method := r.Header.Get("Access-Control-Request-Method")
	headers := splitList(r.Header.Get("Access-Control-Request-Headers"))

	if o == "" || !c.originAllowed(o) || !c.methodAllowed(method) || !c.headersAllowed(headers) {
		return false
	}

	c.allowOrigin(h, o)
	h.Set("Access-Control-Allow-Methods", strings.ToUpper(method))

	if len(headers) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
	}

	return true
}

func (c *CORS) actual(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	o := r.Header.Get("Origin")

	h.Add("Vary", "Origin")

	if o == "" || !c.originAllowed(o) || !c.methodAllowed(r.Method) {
		return
	}

	c.allowOrigin(h, o)

	if len(c.exposedHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(c.exposedHeaders, ", "))
	}
}

func (c *CORS) allowOrigin(h http.Header, o string) {
	if c.anyOrigin() {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", o)
	}

	if c.allowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

func (c *CORS) anyOrigin() bool {
	return len(c.allowedOrigins) == 1 && c.allowedOrigins[0] == "*"
}

func (c *CORS) originAllowed(o string) bool {
	return c.anyOrigin() || contains(c.allowedOrigins, strings.ToLower(o))
}

func (c *CORS) methodAllowed(m string) bool {
	return contains(c.allowedMethods, strings.ToUpper(m))
}

func (c *CORS) headersAllowed(hs []string) bool {
	for _, h := range hs {
		if !contains(c.allowedHeaders, http.CanonicalHeaderKey(h)) {
			return false
		}
	}

	return true
}

func (c *CORS) parse(cfg *corsConfig) error {
	if cfg.Enabled != nil {
		c.enabled = *cfg.Enabled
	}

	if cfg.AllowCredentials != nil {
		c.allowCredentials = *cfg.AllowCredentials
	}

	if cfg.AllowedOrigins != nil {
		c.allowedOrigins = make([]string, 0, len(*cfg.AllowedOrigins))

		for _, o := range *cfg.AllowedOrigins {
			o = strings.ToLower(strings.TrimSpace(o))

			if o != "*" {
				if _, err := url.Parse(o); err != nil {
					return fmt.Errorf("origin %q is not valid", o)
				}
			}

			c.allowedOrigins = append(c.allowedOrigins, o)
		}
	}

	if cfg.AllowedHeaders != nil {
		c.allowedHeaders = canonical(*cfg.AllowedHeaders)
	}

	if cfg.ExposedHeaders != nil {
		c.exposedHeaders = canonical(*cfg.ExposedHeaders)
	}

	if cfg.AllowedMethods != nil {
		c.allowedMethods = make([]string, 0, len(*cfg.AllowedMethods))

		for _, m := range *cfg.AllowedMethods {
			m = strings.ToUpper(strings.TrimSpace(m))

			if !contains(recognizedMethods, m) {
				return fmt.Errorf("method %q is not valid", m)
			}

			c.allowedMethods = append(c.allowedMethods, m)
		}
	}

	return nil
}

func (c *CORS) validate() error {
	if !c.enabled {
		return nil
	}

	if len(c.allowedOrigins) == 0 {
		return ErrNoAllowedOrigins
	}

	if len(c.allowedMethods) == 0 {
		return ErrNoAllowedMethods
	}

	return nil
}

func canonical(hs []string) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, http.CanonicalHeaderKey(strings.TrimSpace(h)))
	}

	return out
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}

	return false
}
