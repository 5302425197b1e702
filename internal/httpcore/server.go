// Package httpcore provides the HTTP server, middleware chain and JSON
// response helpers the todo service is built on.
package httpcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options configures a Server.
type Options struct {
	Port           int
	RequestTimeout time.Duration
	Verbose        bool
}

// Server wraps a chi router with the common middleware and owns the
// listen/shutdown lifecycle.
type Server struct {
	Router *chi.Mux
	Logger *slog.Logger
	opts   Options
	mw     *Middleware
}

// New creates a Server. Routes are mounted on Router by the caller.
func New(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	mw := NewMiddleware(logger, opts.Verbose)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLog)
	r.Use(mw.Recover)
	if opts.RequestTimeout > 0 {
		r.Use(Timeout(opts.RequestTimeout))
	}

	return &Server{
		Router: r,
		Logger: logger,
		opts:   opts,
		mw:     mw,
	}
}

// Middleware returns the middleware instance, which exposes the request log.
func (s *Server) Middleware() *Middleware {
	return s.mw
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully, waiting for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.opts.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server is running", "addr", addr, "url", fmt.Sprintf("http://localhost:%d", s.opts.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ServeHTTP implements http.Handler so the Server can be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Status: "error", Message: message})
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}
