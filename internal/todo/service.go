// Package todo implements the business operations on todos: creation,
// paginated listing, lookup, partial update and deletion.
package todo

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wondertwin-ai/todo-service/internal/apperr"
	"github.com/wondertwin-ai/todo-service/internal/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// NotFoundMessage is reported for any operation targeting a missing todo.
const NotFoundMessage = "Todo not found"

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// ListResult is a page of todos plus its pagination metadata.
type ListResult struct {
	Todos      []store.Todo `json:"todos"`
	Pagination Pagination   `json:"pagination"`
}

// CreateInput is a validated create request.
type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput is a validated partial update. Nil fields are not changed.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Service translates validated input into store operations.
type Service struct {
	store store.Store
}

// NewService creates a service over the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Create inserts a new, not yet completed todo.
func (s *Service) Create(ctx context.Context, in CreateInput) (store.Todo, error) {
	t, err := s.store.Create(ctx, store.NewTodo{
		Title:       in.Title,
		Description: in.Description,
	})
	if err != nil {
		return store.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// List returns page number page (1-based) of at most limit todos, newest
// first. Non-positive arguments fall back to the defaults.
func (s *Service) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	skip := (page - 1) * limit

	var (
		todos []store.Todo
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		todos, err = s.store.List(gctx, skip, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []store.Todo{}
	}

	return ListResult{
		Todos: todos,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   TotalPages(total, limit),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Get returns the todo with the given id.
func (s *Service) Get(ctx context.Context, id string) (store.Todo, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Todo{}, classify("get", id, err)
	}
	return t, nil
}

// Update applies the supplied fields and returns the updated todo.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (store.Todo, error) {
	t, err := s.store.Update(ctx, id, store.Patch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	})
	if err != nil {
		return store.Todo{}, classify("update", id, err)
	}
	return t, nil
}

// Delete removes the todo permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return classify("delete", id, err)
	}
	return nil
}

func classify(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(NotFoundMessage, err)
	}
	return fmt.Errorf("%s todo %s: %w", op, id, err)
}
