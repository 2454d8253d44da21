package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Middleware func(http.Handler) http.Handler

// Chain aplica los middlewares de afuera hacia adentro en el orden recibido.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey int

const reqIDKey ctxKey = iota

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), reqIDKey, id)))
	})
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Str("req_id", requestIDFrom(r.Context())).Str("path", r.URL.Path).Interface("panic", rec).Msg("panic recuperado")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "error interno"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		ev := log.Info()
		if rec.status >= 500 {
			ev = log.Error()
		} else if rec.status >= 400 {
			ev = log.Warn()
		}
		ev.Str("req_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP devuelve la IP del cliente. Con trustProxy toma el primer valor
// de X-Forwarded-For y después X-Real-IP; sin proxy de confianza solo
// cuenta la dirección de la conexión.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		return "unknown"
	}
	return host
}

type window struct {
	start time.Time
	count int
}

// limiter cuenta pedidos por clave en ventanas fijas de un minuto.
type limiter struct {
	mu      sync.Mutex
	perMin  int
	buckets map[string]*window
	now     func() time.Time
}

func newLimiter(perMin int) *limiter {
	return &limiter{perMin: perMin, buckets: map[string]*window{}, now: time.Now}
}

func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= time.Minute {
		if len(l.buckets) > 10000 {
			for k, v := range l.buckets {
				if now.Sub(v.start) >= time.Minute {
					delete(l.buckets, k)
				}
			}
		}
		l.buckets[key] = &window{start: now, count: 1}
		return true
	}
	if b.count >= l.perMin {
		return false
	}
	b.count++
	return true
}

func tooMany(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Demasiadas solicitudes, probá en un minuto"})
}

// RateLimit limita pedidos por IP a perMin por minuto; 0 lo desactiva.
func RateLimit(perMin int, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		if perMin <= 0 {
			return next
		}
		l := newLimiter(perMin)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r, trustProxy)) {
				tooMany(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicRateLimit aplica límites más estrictos a endpoints públicos de escritura.
// Las claves son "METODO /ruta".
func PublicRateLimit(limits map[string]int, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		ls := make(map[string]*limiter, len(limits))
		for route, n := range limits {
			ls[route] = newLimiter(n)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l, ok := ls[r.Method+" "+r.URL.Path]; ok && !l.allow(clientIP(r, trustProxy)) {
				tooMany(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
