package feed

import (
	"context"
	"fmt"
	"strings"
)

// Store persists entries, deduplicating by external id
type Store interface {
	// Insert returns the new id, ErrDuplicate when the external id exists
	Insert(ctx context.Context, e Entry) (int64, error)
	// After returns up to limit entries with id greater than afterID, ascending
	After(ctx context.Context, afterID int64, limit int) ([]StoredEntry, error)
	// LatestExternalID returns the newest external id for source, empty when none
	LatestExternalID(ctx context.Context, source string) (string, error)
	// LatestID returns the newest entry id, zero when empty
	LatestID(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the store named by url
// sqlite://path, sqlite::memory: and file: urls use SQLite; postgres:// and postgresql:// use Postgres
func Open(ctx context.Context, url string) (Store, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		s, err := OpenPostgres(ctx, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	path, ok := sqlitePath(url)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func sqlitePath(url string) (string, bool) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return strings.TrimPrefix(url, "sqlite://"), true
	case strings.HasPrefix(url, "sqlite:"):
		return strings.TrimPrefix(url, "sqlite:"), true
	case strings.HasPrefix(url, "file:"):
		return url, true
	}
	return "", false
}
