package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/caseforest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/caseforest/internal/core/domain"
	"github.com/custodia-labs/caseforest/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// DefaultFileName is the database file created in the data directory.
const DefaultFileName = "history.db"

// Store is a SQLite-backed driven.HistoryStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path.
// If path is empty, defaults to ~/.caseforest/data/history.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".caseforest", "data", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode lets the web server and CLI share the file
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_query_history.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

const selectColumns = `SELECT id, query, encoded_key, is_pinned, is_user_submitted, count, created_at, updated_at FROM query_history`

// FindByKey returns the entry with the given encoded key.
func (s *Store) FindByKey(ctx context.Context, encodedKey string) (*domain.QueryHistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE encoded_key = ?`, encodedKey)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find history entry: %w", err)
	}
	return entry, nil
}

// Create stores a new entry and assigns its ID.
func (s *Store) Create(ctx context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history (id, query, encoded_key, is_pinned, is_user_submitted, count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, entry.Query, entry.EncodedKey, entry.IsPinned, entry.IsUserSubmitted, entry.Count, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create history entry: %w", err)
	}
	entry.ID = id
	return nil
}

// Update writes count, updatedAt and isPinned of an existing entry.
func (s *Store) Update(ctx context.Context, entry *domain.QueryHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE query_history SET count = ?, updated_at = ?, is_pinned = ?
		WHERE id = ? AND encoded_key = ?
	`, entry.Count, entry.UpdatedAt, entry.IsPinned, entry.ID, entry.EncodedKey)
	if err != nil {
		return fmt.Errorf("update history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update history entry: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPinned returns up to limit pinned entries in creation order.
func (s *Store) ListPinned(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.list(ctx, `WHERE is_pinned = 1 ORDER BY seq ASC`, limit)
}

// ListRecent returns up to limit entries, most recently updated first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.list(ctx, `ORDER BY updated_at DESC, seq DESC`, limit)
}

// ListByCount returns up to limit entries in descending count order.
func (s *Store) ListByCount(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	return s.list(ctx, `ORDER BY count DESC, updated_at DESC, seq DESC`, limit)
}

// list runs an ordered scan. A negative limit means no limit.
func (s *Store) list(ctx context.Context, clause string, limit int) ([]domain.QueryHistoryEntry, error) {
	if limit < 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+" "+clause+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []domain.QueryHistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.QueryHistoryEntry, error) {
	var e domain.QueryHistoryEntry
	if err := row.Scan(&e.ID, &e.Query, &e.EncodedKey, &e.IsPinned, &e.IsUserSubmitted,
		&e.Count, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
