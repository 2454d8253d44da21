package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		trust   bool
		headers map[string]string
		want    string
	}{
		{"forwarded", true, map[string]string{"X-Forwarded-For": "181.1.2.3, 10.0.0.1"}, "181.1.2.3"},
		{"real ip", true, map[string]string{"X-Real-IP": "181.9.9.9"}, "181.9.9.9"},
		{"forwarded gana", true, map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "1.1.1.1"},
		{"proxy sin encabezados", true, nil, "192.0.2.1"},
		{"sin proxy ignora encabezados", false, map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(r, tc.trust))
		})
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = ""
	assert.Equal(t, "unknown", clientIP(r, false))
}

func TestLimiterWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, l.allow("a"))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Chain(ok, RateLimit(1, false), PublicRateLimit(map[string]int{"POST /api/orders": 1}, false))

	do := func(method, path string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet, "/api/products"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodGet, "/api/products"))

	h = Chain(ok, PublicRateLimit(map[string]int{"POST /api/orders": 1}, false))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/api/orders"))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/api/orders"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet, "/api/orders"))
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	do := func(h http.Handler, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	direct := Chain(ok, PublicRateLimit(map[string]int{"POST /admin/login": 2}, false))
	assert.Equal(t, http.StatusNoContent, do(direct, "1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, do(direct, "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, do(direct, "3.3.3.3"))

	proxied := Chain(ok, PublicRateLimit(map[string]int{"POST /admin/login": 2}, true))
	assert.Equal(t, http.StatusNoContent, do(proxied, "1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, do(proxied, "1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do(proxied, "1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, do(proxied, "2.2.2.2"))
}

func TestRecoveryAndRequestID(t *testing.T) {
	t.Parallel()

	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, requestIDFrom(r.Context()))
		panic("se rompió")
	})
	rec := httptest.NewRecorder()
	Chain(boom, RequestID, Recovery, Logging).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"error interno"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
