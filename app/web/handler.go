package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mpraski/competitor-form/app/ratelimit"
	"github.com/mpraski/competitor-form/app/submission"
	"github.com/mpraski/competitor-form/app/validation"
	"github.com/mpraski/competitor-form/app/webhook"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type (
	Submitter interface {
		Submit(context.Context, submission.Fields) submission.Outcome
		Reset()
	}

	Handler struct {
		submitter Submitter
		monitor   *Monitor
		display   *Display
		options   validation.Options
		outcomes  *prometheus.CounterVec
	}

	formRequest struct {
		Competitor1 string `json:"competitor1"`
		Competitor2 string `json:"competitor2"`
		Competitor3 string `json:"competitor3"`
		Country     string `json:"country"`
		Status      string `json:"status"`
	}

	formResponse struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Category string `json:"category,omitempty"`
	}

	fieldsResponse struct {
		Competitor1 bool `json:"competitor1"`
		Competitor2 bool `json:"competitor2"`
		Competitor3 bool `json:"competitor3"`
	}
)

const maxBody = 16 << 10

func NewHandler(
	submitter Submitter,
	monitor *Monitor,
	display *Display,
	options validation.Options,
	outcomes *prometheus.CounterVec,
) *Handler {
	return &Handler{
		submitter: submitter,
		monitor:   monitor,
		display:   display,
		options:   options,
		outcomes:  outcomes,
	}
}

// Router mounts the form endpoints behind mws, in the order given. The
// connection's own address is recorded before RealIP rewrites RemoteAddr, so
// per-client middleware cannot be steered by forwarding headers.
func (h *Handler) Router(mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(withPeerAddr, middleware.RealIP, middleware.Recoverer)
	r.Use(mws...)

	r.Post("/analysis", h.submit)
	r.Post("/reset", h.reset)
	r.Get("/rate-limit", h.status)
	r.Post("/fields/check", h.checkFields)
	r.Post("/interaction", h.interaction)

	return r
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decode(w, r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	out := h.submitter.Submit(r.Context(), submission.Fields{
		Competitors: []string{req.Competitor1, req.Competitor2, req.Competitor3},
		Country:     req.Country,
		Status:      req.Status,
		UserAgent:   r.UserAgent(),
	})

	result, code := classify(out)

	log.WithFields(log.Fields{
		"result": result,
		"human":  h.display.Human(),
	}).Info("submission handled")

	if h.outcomes != nil {
		h.outcomes.WithLabelValues(result).Inc()
	}

	if out.Admission != nil {
		ratelimit.WriteResultHeaders(w.Header(), *out.Admission)
		h.monitor.Refresh(context.WithoutCancel(r.Context()))
	}

	writeJSON(w, code, formResponse{Success: out.Success, Message: out.Message, Category: out.Category})
}

func (h *Handler) reset(w http.ResponseWriter, _ *http.Request) {
	h.submitter.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	s := h.monitor.Refresh(context.WithoutCancel(r.Context()))
	ratelimit.WriteStatusHeaders(w.Header(), s)

	writeJSON(w, http.StatusOK, h.display.Snapshot())
}

func (h *Handler) checkFields(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decode(w, r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, fieldsResponse{
		Competitor1: h.options.ValidName(req.Competitor1),
		Competitor2: h.options.ValidName(req.Competitor2),
		Competitor3: h.options.ValidName(req.Competitor3),
	})
}

func (h *Handler) interaction(w http.ResponseWriter, _ *http.Request) {
	h.display.MarkHuman()
	w.WriteHeader(http.StatusNoContent)
}

func classify(out submission.Outcome) (string, int) {
	switch err := out.Err; {
	case out.Success:
		return "success", http.StatusOK
	case errors.Is(err, validation.ErrEmptyInput),
		errors.Is(err, validation.ErrTooLong),
		errors.Is(err, validation.ErrDuplicate),
		errors.Is(err, validation.ErrInvalidSelection):
		return "invalid", http.StatusUnprocessableEntity
	case errors.Is(err, ratelimit.ErrRateLimited):
		return "rate_limited", http.StatusTooManyRequests
	case errors.Is(err, submission.ErrBusy):
		return "busy", http.StatusConflict
	case errors.Is(err, webhook.ErrTimeout):
		return "timeout", http.StatusGatewayTimeout
	case errors.Is(err, webhook.ErrServerRejected):
		return "rejected", http.StatusBadGateway
	case errors.Is(err, webhook.ErrTransport):
		return "unreachable", http.StatusBadGateway
	}

	return "error", http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(v)
}
