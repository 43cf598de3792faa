package local

import (
	"context"
	"strings"
	"testing"

	"github.com/Gajesh2007/ai-debate-judge/council"
	"github.com/Gajesh2007/ai-debate-judge/signing"
	"github.com/Gajesh2007/ai-debate-judge/storage"
)

func testRecord() *storage.Record {
	return &storage.Record{
		Topic: "Should remote work be the default?",
		SignedVerdict: &signing.SignedVerdict{
			Verdict: council.CouncilVerdict{
				FinalWinner: "alice",
				VoteCount:   map[string]int{"alice": 3, "bob": 2},
			},
			Hash:          "abc123",
			Signature:     "def456",
			SignerAddress: "0xfeed",
			Timestamp:     1700000000000,
		},
		Metadata: map[string]string{"source": "test"},
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.Save(context.Background(), testRecord())
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated record ID")
	}

	rec, err := store.Load(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Topic != "Should remote work be the default?" {
		t.Errorf("unexpected topic %q", rec.Topic)
	}
	if rec.SignedVerdict.Verdict.FinalWinner != "alice" {
		t.Errorf("unexpected winner %q", rec.SignedVerdict.Verdict.FinalWinner)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set on save")
	}
}

func TestLoad_NotFound(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background(), "missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSave_SanitizesID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	rec := testRecord()
	rec.ID = "../../escape"
	if _, err := store.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	// The record must round-trip under its sanitized name, inside the
	// base directory.
	if _, err := store.Load(context.Background(), "../../escape"); err != nil {
		t.Errorf("sanitized record must load by the same ID, got %v", err)
	}
}
