package httpcore

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogEntry captures details of an incoming request for admin inspection.
type RequestLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	RequestID  string    `json:"request_id,omitempty"`
}

// RequestLog keeps the most recent requests in a fixed-size circular buffer
// for /admin/requests. It is safe for concurrent use.
type RequestLog struct {
	mu    sync.Mutex
	buf   []RequestLogEntry
	start int // index of the oldest entry
	n     int
}

// NewRequestLog creates a request log holding at most size entries.
func NewRequestLog(size int) *RequestLog {
	if size < 1 {
		size = 1
	}
	return &RequestLog{buf: make([]RequestLogEntry, size)}
}

// Add records e, overwriting the oldest entry once the log is full.
func (rl *RequestLog) Add(e RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.n < len(rl.buf) {
		rl.buf[(rl.start+rl.n)%len(rl.buf)] = e
		rl.n++
		return
	}
	rl.buf[rl.start] = e
	rl.start = (rl.start + 1) % len(rl.buf)
}

// Entries returns the recorded requests, oldest first.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make([]RequestLogEntry, rl.n)
	for i := range out {
		out[i] = rl.buf[(rl.start+i)%len(rl.buf)]
	}
	return out
}

// Len reports how many requests are recorded.
func (rl *RequestLog) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.n
}

// Clear drops every entry.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	clear(rl.buf)
	rl.start, rl.n = 0, 0
}

// requestLogSize is how many requests /admin/requests can show.
const requestLogSize = 1000

// Middleware holds the state shared by the server's middleware.
type Middleware struct {
	logger  *slog.Logger
	verbose bool
	ReqLog  *RequestLog
}

// NewMiddleware creates a new Middleware instance.
func NewMiddleware(logger *slog.Logger, verbose bool) *Middleware {
	return &Middleware{
		logger:  logger,
		verbose: verbose,
		ReqLog:  NewRequestLog(requestLogSize),
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// RequestLog records every request into the ring buffer and the logger.
// Requests are logged at debug level unless the server is verbose.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		dur := time.Since(start)
		reqID := chimw.GetReqID(r.Context())
		m.ReqLog.Add(RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			StatusCode: rec.statusCode,
			DurationMS: dur.Milliseconds(),
			RequestID:  reqID,
		})

		level := slog.LevelDebug
		if m.verbose {
			level = slog.LevelInfo
		}
		m.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", dur,
			"request_id", reqID,
		)
	})
}

// Recover turns a panic in a handler into a generic 500 error response.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			m.logger.Error("panic serving request",
				"panic", rec,
				"path", r.URL.Path,
				"request_id", chimw.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			Error(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// Timeout bounds the request context, and so every store call made on its
// behalf, to d.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
