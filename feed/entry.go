// Package feed stores scraped text entries and streams them into the engine
package feed

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/firehose/core"
)

// Sentinel errors
var (
	ErrDuplicate      = errors.New("entry already exists")
	ErrUnsupportedURL = errors.New("unsupported database url")
)

// Entry is one piece of scraped text
type Entry struct {
	ExternalID string    `json:"external_id"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	SourceURL  string    `json:"source_url,omitempty"`
	EntryType  string    `json:"entry_type,omitempty"`
	Venue      string    `json:"venue,omitempty"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text"`
	Classifier string    `json:"classifier,omitempty"`
	Value      string    `json:"value,omitempty"`
	WordCount  int       `json:"word_count"`
	CharCount  int       `json:"char_count"`
}

// StoredEntry is an entry with its store-assigned id
type StoredEntry struct {
	ID int64 `json:"id"`
	Entry
}

// Counted fills WordCount and CharCount from Text
func (e Entry) Counted() Entry {
	e.WordCount = len(strings.Fields(e.Text))
	e.CharCount = utf8.RuneCountInString(e.Text)
	return e
}

// Tag builds the particle tag for the entry
func (e Entry) Tag() string {
	return core.BuildTag(e.Classifier, e.Value, e.Source)
}

func (e Entry) validate() error {
	if e.ExternalID == "" {
		return errors.New("entry external id is required")
	}
	if e.Source == "" {
		return errors.New("entry source is required")
	}
	if strings.TrimSpace(e.Text) == "" {
		return errors.New("entry text is required")
	}
	return nil
}
