package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// loggingWriter persists the response status code.
type loggingWriter struct {
	http.ResponseWriter
	Code int
}

const decimalBase = 10

func WithMetrics(
	counter *prometheus.CounterVec,
	histogram prometheus.Histogram,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lw := newLoggingWriter(w)
			timer := prometheus.NewTimer(histogram)

			defer func() {
				timer.ObserveDuration()
				counter.WithLabelValues(
					r.Method,
					routePattern(r),
					strconv.FormatInt(int64(lw.Code), decimalBase),
				).Inc()
			}()

			next.ServeHTTP(lw, r)
		})
	}
}

func WithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lw := newLoggingWriter(w)

			defer func() {
				entry := log.WithFields(log.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"code":       lw.Code,
					"address":    r.RemoteAddr,
					"user_agent": r.UserAgent(),
				})

				switch c := lw.Code; {
				case c >= http.StatusInternalServerError:
					entry.Error("request failed")
				case c >= http.StatusBadRequest:
					entry.Warn("request rejected")
				default:
					entry.Debug("request served")
				}
			}()

			next.ServeHTTP(lw, r)
		})
	}
}

// routePattern keeps metric labels bounded to the registered routes.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}

	return "unmatched"
}

func newLoggingWriter(w http.ResponseWriter) *loggingWriter {
	if w, ok := w.(*loggingWriter); ok {
		return w
	}

	return &loggingWriter{w, http.StatusOK}
}

func (w *loggingWriter) WriteHeader(code int) {
	w.Code = code
	w.ResponseWriter.WriteHeader(code)
}
