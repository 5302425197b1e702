package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/todo-service/internal/apperr"
	"github.com/wondertwin-ai/todo-service/internal/httpcore"
	"github.com/wondertwin-ai/todo-service/internal/todo"
	"github.com/wondertwin-ai/todo-service/internal/validate"
)

// DeletedMessage is the body message of a successful delete.
const DeletedMessage = "Deleted successfully"

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// CreateTodo handles POST /todo
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	var req createTodoRequest
	if err := h.validator.Decode(validate.Create, body, &req); err != nil {
		return err
	}

	created, err := h.svc.Create(r.Context(), todo.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	httpcore.JSON(w, http.StatusCreated, created)
	return nil
}

// ListTodos handles GET /todo
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), todo.DefaultPage)
	limit := queryInt(q.Get("limit"), todo.DefaultLimit)

	if page < 1 {
		return apperr.Validation("Page must be greater than 0")
	}
	if limit < 1 || limit > todo.MaxLimit {
		return apperr.Validationf("Limit must be between 1 and %d", todo.MaxLimit)
	}

	res, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		return err
	}
	httpcore.JSON(w, http.StatusOK, res)
	return nil
}

// GetTodo handles GET /todo/{id}
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) error {
	found, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	httpcore.JSON(w, http.StatusOK, found)
	return nil
}

// UpdateTodo handles PATCH /todo/{id}
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	var req updateTodoRequest
	if err := h.validator.Decode(validate.Update, body, &req); err != nil {
		return err
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), todo.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return err
	}
	httpcore.JSON(w, http.StatusOK, updated)
	return nil
}

// DeleteTodo handles DELETE /todo/{id}
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	httpcore.JSON(w, http.StatusOK, map[string]string{"message": DeletedMessage})
	return nil
}
