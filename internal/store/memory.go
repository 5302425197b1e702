package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a thread-safe, in-memory Store. Ids are ObjectID hex strings so
// they look the same as the ones MongoDB hands out.
type Memory struct {
	mu    sync.RWMutex
	items map[string]Todo
	order []string // insertion order, oldest first
	clock func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]Todo),
		order: make([]string, 0),
		clock: now,
	}
}

// SetClock replaces the clock used for timestamps.
func (s *Memory) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *Memory) Create(_ context.Context, in NewTodo) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.clock()
	t := Todo{
		ID:          primitive.NewObjectID().Hex(),
		Title:       in.Title,
		Description: cloneString(in.Description),
		Completed:   false,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.items[t.ID] = t
	s.order = append(s.order, t.ID)
	return copyTodo(t), nil
}

func (s *Memory) Get(_ context.Context, id string) (Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	return copyTodo(t), nil
}

// List walks the insertion order backwards, which is creation time
// descending with ties broken by insertion.
func (s *Memory) List(_ context.Context, skip, limit int) ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	out := make([]Todo, 0, min(max(limit, 0), len(s.order)))
	for i := len(s.order) - 1 - skip; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyTodo(s.items[s.order[i]]))
	}
	return out, nil
}

func (s *Memory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *Memory) Update(_ context.Context, id string, p Patch) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = cloneString(p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if !p.Empty() {
		t.UpdatedAt = s.clock()
	}
	s.items[id] = t
	return copyTodo(t), nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Memory) Ping(context.Context) error { return nil }

func (s *Memory) Close(context.Context) error { return nil }

func copyTodo(t Todo) Todo {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
