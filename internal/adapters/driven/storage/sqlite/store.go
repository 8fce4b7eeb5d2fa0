package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/artifact-search/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// dbFileName is the history database inside the data directory.
const dbFileName = "history.db"

// Store is a SQLite-backed search history.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.artifact-search/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".artifact-search", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets the TUI read history while a search writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

// Save records a search.
func (s *Store) Save(ctx context.Context, record domain.SearchRecord) error {
	targets, err := json.Marshal(sourcesOrEmpty(record.TargetApps))
	if err != nil {
		return fmt.Errorf("marshalling target apps: %w", err)
	}
	searched, err := json.Marshal(sourcesOrEmpty(record.SourcesSearched))
	if err != nil {
		return fmt.Errorf("marshalling sources searched: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, query, target_apps, sources_searched, total_results, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			query = excluded.query,
			target_apps = excluded.target_apps,
			sources_searched = excluded.sources_searched,
			total_results = excluded.total_results,
			duration_ms = excluded.duration_ms,
			created_at = excluded.created_at
	`,
		record.ID,
		record.Query,
		string(targets),
		string(searched),
		record.TotalResults,
		record.DurationMS,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving search record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, target_apps, sources_searched, total_results, duration_ms, created_at
		FROM search_history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.SearchRecord, 0)
	for rows.Next() {
		var (
			r                 domain.SearchRecord
			targets, searched string
			createdAt         string
		)
		if err := rows.Scan(&r.ID, &r.Query, &targets, &searched, &r.TotalResults, &r.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning search record: %w", err)
		}
		if err := json.Unmarshal([]byte(targets), &r.TargetApps); err != nil {
			return nil, fmt.Errorf("unmarshalling target apps: %w", err)
		}
		if err := json.Unmarshal([]byte(searched), &r.SourcesSearched); err != nil {
			return nil, fmt.Errorf("unmarshalling sources searched: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// migrate runs all pending migrations and records each applied version.
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_search_history.up.sql" -> 1
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func sourcesOrEmpty(s []domain.AppSource) []domain.AppSource {
	if s == nil {
		return []domain.AppSource{}
	}
	return s
}
