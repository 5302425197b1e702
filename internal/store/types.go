// Package store defines the Todo record and the Store backends that persist
// it: MongoDB, PostgreSQL and an in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no todo matches the given id.
var ErrNotFound = errors.New("todo not found")

// Todo is the sole persisted entity.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTodo holds the fields supplied on creation.
type NewTodo struct {
	Title       string
	Description *string
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Store is a collection of todos. Implementations assign ids and timestamps.
// Lookups by an id the backend cannot parse return ErrNotFound.
type Store interface {
	Create(ctx context.Context, in NewTodo) (Todo, error)
	Get(ctx context.Context, id string) (Todo, error)
	// List returns at most limit todos ordered by creation time, newest
	// first, after skipping skip of them.
	List(ctx context.Context, skip, limit int) ([]Todo, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, p Patch) (Todo, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// now returns the store clock, truncated to the millisecond precision
// MongoDB keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
