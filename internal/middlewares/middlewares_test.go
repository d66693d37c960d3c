package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sportsmanagency/backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func TestResolveClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trust      bool
		expected   string
	}{
		{name: "socket address", remoteAddr: "10.0.0.7:51234", expected: "10.0.0.7"},
		{name: "forwarded first hop", remoteAddr: "10.0.0.7:51234", xff: "203.0.113.9, 10.0.0.1", trust: true, expected: "203.0.113.9"},
		{name: "forwarded ignored when untrusted", remoteAddr: "10.0.0.7:51234", xff: "203.0.113.9", trust: false, expected: "10.0.0.7"},
		{name: "blank forwarded falls back", remoteAddr: "10.0.0.7:51234", xff: " ,10.0.0.1", trust: true, expected: "10.0.0.7"},
		{name: "ipv6 socket", remoteAddr: "[2001:db8::1]:443", expected: "2001:db8::1"},
		{name: "address without port", remoteAddr: "10.0.0.7", expected: "10.0.0.7"},
		{name: "no address", remoteAddr: "", expected: "unknown"},
		{name: "forwarded markup falls back", remoteAddr: "10.0.0.7:51234", xff: "<script>alert(1)</script>", trust: true, expected: "10.0.0.7"},
		{name: "oversized forwarded entry falls back", remoteAddr: "10.0.0.7:51234", xff: strings.Repeat("a", 80) + ", 10.0.0.1", trust: true, expected: "10.0.0.7"},
		{name: "forwarded ipv6", remoteAddr: "10.0.0.7:51234", xff: "2001:db8::2", trust: true, expected: "2001:db8::2"},
		{name: "forwarded with port", remoteAddr: "10.0.0.7:51234", xff: "203.0.113.9:8080", trust: true, expected: "203.0.113.9"},
		{name: "forwarded mapped ipv4", remoteAddr: "10.0.0.7:51234", xff: "::ffff:203.0.113.9", trust: true, expected: "203.0.113.9"},
		{name: "garbage socket address", remoteAddr: "not-an-ip", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			assert.Equal(t, tt.expected, ResolveClientIP(req, tt.trust))
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var seen string
	handler := ClientIPMiddleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/likes/1", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.4", seen)
	assert.Equal(t, "unknown", GetClientIP(req.Context()))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"internal"}`, w.Body.String())
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects declared oversize body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("accepts small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/news/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/news/42", nil))

	// one series per method/route/status combination
	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.HTTPLatency), 1)
}
