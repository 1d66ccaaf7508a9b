package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// entryNamespace scopes deterministic external ids
var entryNamespace = uuid.MustParse("6f1d8c3e-2b4a-5e7f-9a10-3c5d7e9f1b2d")

// ImportOptions describe the entries produced from lines
type ImportOptions struct {
	Source     string
	EntryType  string
	Classifier string
	Value      string
	Now        func() time.Time
}

// ImportResult counts what an import did
type ImportResult struct {
	Inserted   int
	Duplicates int
}

// ExternalID derives a stable id from source and text
func ExternalID(source, text string) string {
	return uuid.NewSHA1(entryNamespace, []byte(source+"\x00"+text)).String()
}

// ImportLines stores one entry per non-empty line of r
// Re-importing the same text for the same source counts as duplicates
func ImportLines(ctx context.Context, store Store, r io.Reader, opts ImportOptions) (ImportResult, error) {
	var res ImportResult
	if opts.Source == "" {
		return res, errors.New("import source is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		_, err := store.Insert(ctx, Entry{
			ExternalID: ExternalID(opts.Source, text),
			Timestamp:  now(),
			Source:     opts.Source,
			EntryType:  opts.EntryType,
			Text:       text,
			Classifier: opts.Classifier,
			Value:      opts.Value,
		})
		switch {
		case errors.Is(err, ErrDuplicate):
			res.Duplicates++
		case err != nil:
			return res, fmt.Errorf("import line %d: %w", res.Inserted+res.Duplicates+1, err)
		default:
			res.Inserted++
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read input: %w", err)
	}
	return res, nil
}
