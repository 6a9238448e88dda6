package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Extraction represents a row in the extractions table.
type Extraction struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	ContentHash string `json:"content_hash"`
	Method      string `json:"method"`
	Abstract    string `json:"abstract,omitempty"`
	Found       bool   `json:"found"`
	Error       string `json:"error,omitempty"`
	WordCount   int    `json:"word_count"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Store wraps the SQLite database holding cached extraction results.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	// Run pending migrations.
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Extraction operations ---

// SaveResult inserts or updates the stored result for a file path.
// Returns the row ID.
func (s *Store) SaveResult(ctx context.Context, ex Extraction) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (path, filename, content_hash, method, abstract, found, error, word_count, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			content_hash = excluded.content_hash,
			method = excluded.method,
			abstract = excluded.abstract,
			found = excluded.found,
			error = excluded.error,
			word_count = excluded.word_count,
			elapsed_ms = excluded.elapsed_ms,
			updated_at = CURRENT_TIMESTAMP
	`, ex.Path, ex.Filename, ex.ContentHash, ex.Method, ex.Abstract, ex.Found,
		ex.Error, ex.WordCount, ex.ElapsedMs)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// If the UPSERT did an UPDATE, LastInsertId may not reflect the existing row.
	if id == 0 {
		row := s.db.QueryRowContext(ctx, "SELECT id FROM extractions WHERE path = ?", ex.Path)
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// GetByPath retrieves the stored result for a file path.
func (s *Store) GetByPath(ctx context.Context, path string) (*Extraction, error) {
	ex := &Extraction{}
	var abstract, errMsg sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, content_hash, method, abstract, found, error,
			word_count, elapsed_ms, created_at, updated_at
		FROM extractions WHERE path = ?
	`, path).Scan(&ex.ID, &ex.Path, &ex.Filename, &ex.ContentHash, &ex.Method,
		&abstract, &ex.Found, &errMsg, &ex.WordCount, &ex.ElapsedMs,
		&ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ex.Abstract = abstract.String
	ex.Error = errMsg.String
	return ex, nil
}

// GetByID retrieves a stored result by row ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*Extraction, error) {
	ex := &Extraction{}
	var abstract, errMsg sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, content_hash, method, abstract, found, error,
			word_count, elapsed_ms, created_at, updated_at
		FROM extractions WHERE id = ?
	`, id).Scan(&ex.ID, &ex.Path, &ex.Filename, &ex.ContentHash, &ex.Method,
		&abstract, &ex.Found, &errMsg, &ex.WordCount, &ex.ElapsedMs,
		&ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ex.Abstract = abstract.String
	ex.Error = errMsg.String
	return ex, nil
}

// List returns stored results ordered by most recent update. A limit of
// zero or less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Extraction, error) {
	query := `
		SELECT id, path, filename, content_hash, method, abstract, found, error,
			word_count, elapsed_ms, created_at, updated_at
		FROM extractions ORDER BY updated_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exs []Extraction
	for rows.Next() {
		var ex Extraction
		var abstract, errMsg sql.NullString
		if err := rows.Scan(&ex.ID, &ex.Path, &ex.Filename, &ex.ContentHash, &ex.Method,
			&abstract, &ex.Found, &errMsg, &ex.WordCount, &ex.ElapsedMs,
			&ex.CreatedAt, &ex.UpdatedAt); err != nil {
			return nil, err
		}
		ex.Abstract = abstract.String
		ex.Error = errMsg.String
		exs = append(exs, ex)
	}
	return exs, rows.Err()
}

// Delete removes a stored result by row ID. Returns sql.ErrNoRows when the
// row does not exist.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PruneMissing deletes rows whose file no longer exists on disk.
// Returns the number of rows removed.
func (s *Store) PruneMissing(ctx context.Context) (int, error) {
	exs, err := s.List(ctx, 0)
	if err != nil {
		return 0, err
	}

	var stale []int64
	for _, ex := range exs {
		if _, err := os.Stat(ex.Path); err != nil {
			stale = append(stale, ex.ID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range stale {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM extractions WHERE id = ?", id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// Stats holds aggregate counts over the stored results.
type Stats struct {
	Total    int     `json:"total"`
	Found    int     `json:"found"`
	NotFound int     `json:"not_found"`
	Failed   int     `json:"failed"`
	AvgWords float64 `json:"avg_words"`
}

// Stats returns aggregate counts of stored results: how many extractions
// succeeded, came up empty, or failed, and the average abstract length.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM extractions", &stats.Total},
		{"SELECT COUNT(*) FROM extractions WHERE found = 1", &stats.Found},
		{"SELECT COUNT(*) FROM extractions WHERE found = 0 AND COALESCE(error, '') = ''", &stats.NotFound},
		{"SELECT COUNT(*) FROM extractions WHERE COALESCE(error, '') != ''", &stats.Failed},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		"SELECT AVG(word_count) FROM extractions WHERE found = 1").Scan(&avg); err != nil {
		return nil, fmt.Errorf("averaging word counts: %w", err)
	}
	stats.AvgWords = avg.Float64
	return stats, nil
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
