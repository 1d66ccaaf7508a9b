package feed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore keeps entries in a shared Postgres database
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and applies the schema
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, e Entry) (int64, error) {
	if err := e.validate(); err != nil {
		return 0, err
	}
	e = e.Counted()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO entries (
			external_id, timestamp, source, source_url, entry_type, venue, title,
			text_content, classifier, value, word_count, character_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id`,
		e.ExternalID, e.Timestamp, e.Source, e.SourceURL, e.EntryType, e.Venue, e.Title,
		e.Text, e.Classifier, e.Value, e.WordCount, e.CharCount,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) After(ctx context.Context, afterID int64, limit int) ([]StoredEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, external_id, timestamp, source, source_url, entry_type, venue, title,
			text_content, classifier, value, word_count, character_count
		FROM entries
		WHERE id > $1
		ORDER BY id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StoredEntry, error) {
		var se StoredEntry
		err := row.Scan(
			&se.ID, &se.ExternalID, &se.Timestamp, &se.Source, &se.SourceURL, &se.EntryType,
			&se.Venue, &se.Title, &se.Text, &se.Classifier, &se.Value, &se.WordCount, &se.CharCount,
		)
		return se, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LatestExternalID(ctx context.Context, source string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT external_id FROM entries
		WHERE source = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`, source).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest external id: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) LatestID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM entries`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get latest id: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
