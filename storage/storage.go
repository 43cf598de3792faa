// Package storage persists adjudication records. Persistence is
// best-effort from the pipeline's point of view: a failed save never
// blocks the verdict from being returned.
package storage

import (
	"context"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/signing"
	"github.com/Gajesh2007/ai-debate-judge/transcript"
)

// Record is the persisted envelope for one adjudication run.
type Record struct {
	ID            string                 `json:"id"`
	CreatedAt     time.Time              `json:"createdAt"`
	Topic         string                 `json:"topic"`
	Transcript    *transcript.Transcript `json:"transcript,omitempty"`
	SignedVerdict *signing.SignedVerdict `json:"signedVerdict"`
	Metadata      map[string]string      `json:"metadata,omitempty"`
}

// Store saves and loads adjudication records. Save assigns the record
// ID when it is empty and returns it.
type Store interface {
	Save(ctx context.Context, rec *Record) (string, error)
	Load(ctx context.Context, id string) (*Record, error)
}
