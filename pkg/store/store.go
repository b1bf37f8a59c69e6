// Package store persists document drafts in SQLite. A draft is a titled delta
// that can be rendered to .docx at any time.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no draft has the requested ID.
var ErrNotFound = errors.New("draft not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drafts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Draft represents a row in the drafts table. Content holds delta JSON.
type Draft struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Store wraps the SQLite database holding drafts.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new draft and returns its ID.
func (s *Store) Insert(ctx context.Context, title, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (title, content) VALUES (?, ?)`, title, content)
	if err != nil {
		return 0, fmt.Errorf("inserting draft: %w", err)
	}
	return res.LastInsertId()
}

// Update replaces the title and content of an existing draft.
func (s *Store) Update(ctx context.Context, d Draft) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, d.Title, d.Content, d.ID)
	if err != nil {
		return fmt.Errorf("updating draft %d: %w", d.ID, err)
	}
	return expectOneRow(res, d.ID)
}

// Delete removes a draft.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting draft %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Get retrieves a draft by ID.
func (s *Store) Get(ctx context.Context, id int64) (*Draft, error) {
	d := &Draft{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM drafts WHERE id = ?
	`, id).Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft %d: %w", id, err)
	}
	return d, nil
}

// List returns all drafts, newest first.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM drafts ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("draft %d: %w", id, ErrNotFound)
	}
	return nil
}
