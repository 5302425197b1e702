// Package api maps the /todo HTTP routes onto the todo service and converts
// every failure into a uniform JSON error response.
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wondertwin-ai/todo-service/internal/apperr"
	"github.com/wondertwin-ai/todo-service/internal/httpcore"
	"github.com/wondertwin-ai/todo-service/internal/todo"
	"github.com/wondertwin-ai/todo-service/internal/validate"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler holds all API handler state.
type Handler struct {
	svc       *todo.Service
	validator *validate.Validator
	logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *todo.Service, v *validate.Validator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, validator: v, logger: logger}
}

// Routes mounts the liveness probe, the /todo routes and the unmatched-route
// handlers. It must run before any other sub-router is mounted so those
// inherit the not-found handling.
func (h *Handler) Routes(r chi.Router) {
	r.NotFound(h.handle(h.RouteNotFound))
	r.MethodNotAllowed(h.handle(h.RouteNotFound))

	r.Get("/", h.Liveness)
	r.Route("/todo", func(r chi.Router) {
		r.Post("/", h.handle(h.CreateTodo))
		r.Get("/", h.handle(h.ListTodos))
		r.Get("/{id}", h.handle(h.GetTodo))
		r.Patch("/{id}", h.handle(h.UpdateTodo))
		r.Delete("/{id}", h.handle(h.DeleteTodo))
	})
}

// handlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing a response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn to http.HandlerFunc. It is the single place where errors
// become HTTP responses.
func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

// writeError sends exactly one error response, using the status that the
// error's kind maps to.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := apperr.Status(err)
	attrs := []any{
		"err", err,
		"kind", apperr.KindOf(err).String(),
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Debug("request rejected", attrs...)
	}
	httpcore.Error(w, status, msg)
}

// RouteNotFound handles any request no route matched.
func (h *Handler) RouteNotFound(w http.ResponseWriter, r *http.Request) error {
	return apperr.RouteNotFound(r.URL.RequestURI())
}

// Liveness handles GET /
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	httpcore.Text(w, http.StatusOK, "OK")
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validationf("Invalid request body: %v", err)
	}
	return body, nil
}
