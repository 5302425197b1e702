// Package admin provides the /admin/* operational endpoints: liveness,
// store readiness and inspection of recent requests.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/todo-service/internal/httpcore"
)

// readyTimeout bounds the store ping behind /admin/ready.
const readyTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides the admin endpoints.
type Handler struct {
	pinger Pinger
	mw     *httpcore.Middleware
	logger *slog.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(pinger Pinger, mw *httpcore.Middleware, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pinger: pinger, mw: mw, logger: logger}
}

// Routes mounts the admin endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/ready", h.handleReady)
		r.Get("/requests", h.handleGetRequests)
		r.Delete("/requests", h.handleClearRequests)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("store not ready", "err", err)
		httpcore.Error(w, http.StatusServiceUnavailable, "Store not ready")
		return
	}
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	httpcore.JSON(w, http.StatusOK, h.mw.ReqLog.Entries())
}

func (h *Handler) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	h.mw.ReqLog.Clear()
	httpcore.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
