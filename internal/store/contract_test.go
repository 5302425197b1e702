package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// runContract exercises the behavior every backend must share. The store
// must be empty when it is called.
func runContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	desc := "two litres"
	created, err := s.Create(ctx, NewTodo{Title: "Buy milk", Description: &desc})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if created.Completed {
		t.Error("expected completed=false on create")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("unexpected timestamps: created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Title != "Buy milk" || got.Description == nil || *got.Description != desc {
		t.Errorf("round trip mismatch: %+v", got)
	}

	done := true
	updated, err := s.Update(ctx, created.ID, Patch{Completed: &done})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !updated.Completed || updated.Title != "Buy milk" || updated.Description == nil || *updated.Description != desc {
		t.Errorf("update touched more than completed: %+v", updated)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updatedAt went backwards: %v < %v", updated.UpdatedAt, created.UpdatedAt)
	}

	for _, title := range []string{"second", "third"} {
		time.Sleep(5 * time.Millisecond)
		if _, err := s.Create(ctx, NewTodo{Title: title}); err != nil {
			t.Fatalf("Create(%s) error: %v", title, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 3 {
		t.Fatalf("Count() = %d, want 3", n)
	}

	page, err := s.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(page) != 2 || page[0].Title != "third" || page[1].Title != "second" {
		t.Fatalf("List(0, 2) = %v, want [third second]", titles(page))
	}
	rest, err := s.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != created.ID {
		t.Fatalf("List(2, 2) = %v, want [Buy milk]", titles(rest))
	}
	empty, err := s.List(ctx, 10, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("List(10, 2) = %v, want empty", titles(empty))
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, created.ID, Patch{Completed: &done}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}

	for _, id := range []string{"nonexistent", "", "65a1b2c3d4e5f60718293a4b", "00000000-0000-0000-0000-000000000000"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func titles(todos []Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.Title)
	}
	return out
}
