package feed

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// Schema version tracking:
// 1 - entries table with classifier columns
const sqliteSchemaVersion = 1

// SQLiteStore keeps entries in a local SQLite database in WAL mode
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer avoids SQLITE_BUSY and keeps :mem: databases on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, e Entry) (int64, error) {
	if err := e.validate(); err != nil {
		return 0, err
	}
	e = e.Counted()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO entries (
			external_id, timestamp, source, source_url, entry_type, venue, title,
			text_content, classifier, value, word_count, character_count
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id`,
		e.ExternalID, e.Timestamp.UTC(), e.Source, e.SourceURL, e.EntryType, e.Venue, e.Title,
		e.Text, e.Classifier, e.Value, e.WordCount, e.CharCount,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) After(ctx context.Context, afterID int64, limit int) ([]StoredEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, external_id, timestamp, source, source_url, entry_type, venue, title,
			text_content, classifier, value, word_count, character_count
		FROM entries
		WHERE id > ?
		ORDER BY id
		LIMIT ?`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		var se StoredEntry
		if err := rows.Scan(
			&se.ID, &se.ExternalID, &se.Timestamp, &se.Source, &se.SourceURL, &se.EntryType,
			&se.Venue, &se.Title, &se.Text, &se.Classifier, &se.Value, &se.WordCount, &se.CharCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out = append(out, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) LatestExternalID(ctx context.Context, source string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT external_id FROM entries
		WHERE source = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`, source).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest external id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) LatestID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM entries`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get latest id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
