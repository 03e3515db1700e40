package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const corsDocument = `
cors:
  enabled: true
  allowedOrigins: [https://example.com]
  allowedMethods: [POST, GET]
`

func TestParseCORS_Disabled(t *testing.T) {
	c, err := ParseCORS(strings.NewReader(""))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if h := c.Middleware(next); h == nil {
		t.Fatalf("expected passthrough handler")
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/analysis", nil)
	r.Header.Set("Origin", "https://example.com")
	c.Middleware(next).ServeHTTP(w, r)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected no cors headers when disabled")
	}
}

func TestParseCORS_RequiresOrigins(t *testing.T) {
	if _, err := ParseCORS(strings.NewReader("cors:\n  enabled: true\n")); err != ErrNoAllowedOrigins {
		t.Fatalf("expected %v, got %v", ErrNoAllowedOrigins, err)
	}
}

func TestParseCORS_RejectsUnknownMethod(t *testing.T) {
	doc := "cors:\n  enabled: true\n  allowedOrigins: ['*']\n  allowedMethods: [TRACE]\n"
	if _, err := ParseCORS(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error for unrecognized method")
	}
}

func TestCORS_Preflight(t *testing.T) {
	c, err := ParseCORS(strings.NewReader(corsDocument))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	called := false
	h := c.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	preflight := func(origin, headers string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodOptions, "/analysis", nil)
		r.Header.Set("Origin", origin)
		r.Header.Set("Access-Control-Request-Method", "POST")
		r.Header.Set("Access-Control-Request-Headers", headers)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := preflight("https://example.com", "content-type, x-requested-with")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Fatalf("expected allowed preflight, got %d %v", w.Code, w.Header())
	}

	if w := preflight("https://evil.test", "content-type"); w.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden origin, got %d", w.Code)
	}

	if w := preflight("https://example.com", "authorization"); w.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden header, got %d", w.Code)
	}

	if called {
		t.Fatalf("preflight must not reach the handler")
	}
}

func TestCORS_ActualRequestExposesRateLimitHeaders(t *testing.T) {
	c, err := ParseCORS(strings.NewReader(corsDocument))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	r := httptest.NewRequest(http.MethodPost, "/analysis", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Fatalf("expected allow origin header")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Rate-Limiting-Remaining") {
		t.Fatalf("expected rate limit headers exposed, got %q", w.Header().Get("Access-Control-Expose-Headers"))
	}
}
