// Package local implements record storage on the local filesystem,
// one JSON file per adjudication record.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gajesh2007/ai-debate-judge/storage"
)

// Store writes records as pretty-printed JSON under a base directory.
type Store struct {
	basePath string
}

// NewStore resolves and creates the base directory.
func NewStore(basePath string) (*Store, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Store{basePath: abs}, nil
}

// Save writes the record to <basePath>/<id>.json. The write goes
// through a temp file and rename so readers never see a partial record.
func (s *Store) Save(_ context.Context, rec *storage.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: marshal record: %w", err)
	}

	final := s.recordPath(rec.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return "", fmt.Errorf("storage: write record: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("storage: commit record: %w", err)
	}
	return rec.ID, nil
}

// Load reads a record by ID.
func (s *Store) Load(_ context.Context, id string) (*storage.Record, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: record not found: %s", id)
		}
		return nil, fmt.Errorf("storage: read record: %w", err)
	}

	var rec storage.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("storage: decode record: %w", err)
	}
	return &rec, nil
}

// recordPath sanitizes the ID so a crafted one cannot escape the base
// directory.
func (s *Store) recordPath(id string) string {
	name := strings.ReplaceAll(filepath.Clean(id), string(filepath.Separator), "_")
	return filepath.Join(s.basePath, name+".json")
}

var _ storage.Store = (*Store)(nil)
