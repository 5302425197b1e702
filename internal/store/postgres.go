package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS todos (
	id          uuid PRIMARY KEY,
	title       text NOT NULL,
	description text,
	completed   boolean NOT NULL DEFAULT false,
	created_at  timestamptz NOT NULL,
	updated_at  timestamptz NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at DESC)`,
}

const todoColumns = `id, title, description, completed, created_at, updated_at`

// Postgres is a Store backed by a PostgreSQL table, accessed through the pgx
// database/sql driver.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens dsn, verifies the connection and creates the todos
// table if it does not exist.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the todos table and its index.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating todos table: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, in NewTodo) (Todo, error) {
	ts := now()
	t := Todo{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	const q = `
INSERT INTO todos (id, title, description, completed, created_at, updated_at)
VALUES ($1, $2, $3, false, $4, $5);
`
	if _, err := p.db.ExecContext(ctx, q, t.ID, t.Title, t.Description, t.CreatedAt, t.UpdatedAt); err != nil {
		return Todo{}, fmt.Errorf("inserting todo: %w", err)
	}
	return t, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Todo{}, ErrNotFound
	}
	q := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1;`
	return scanTodo(p.db.QueryRowContext(ctx, q, id))
}

func (p *Postgres) List(ctx context.Context, skip, limit int) ([]Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todos ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2;`
	rows, err := p.db.QueryContext(ctx, q, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()

	out := make([]Todo, 0, limit)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return out, nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM todos;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting todos: %w", err)
	}
	return n, nil
}

func (p *Postgres) Update(ctx context.Context, id string, patch Patch) (Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Todo{}, ErrNotFound
	}
	if patch.Empty() {
		return p.Get(ctx, id)
	}

	sets := []string{"updated_at = $1"}
	args := []any{now()}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE todos SET %s WHERE id = $%d RETURNING %s;`,
		strings.Join(sets, ", "), len(args), todoColumns)
	return scanTodo(p.db.QueryRowContext(ctx, q, args...))
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close(context.Context) error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (Todo, error) {
	var (
		t    Todo
		desc sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &desc, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, fmt.Errorf("scanning todo: %w", err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
