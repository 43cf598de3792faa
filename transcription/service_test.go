package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/Gajesh2007/ai-debate-judge/errors"
)

// stubTranscriber transcribes each chunk to a deterministic token so
// tests can check ordering. Optional hooks inject delays and failures.
type stubTranscriber struct {
	name      string
	limit     int
	calls     atomic.Int32
	delayFor  func(chunk []byte) time.Duration
	failFor   func(chunk []byte, call int) error
	resultFor func(chunk []byte) *ChunkResult
}

func (s *stubTranscriber) Name() string {
	if s.name == "" {
		return "stub"
	}
	return s.name
}
func (s *stubTranscriber) IsAvailable(_ context.Context) bool { return true }
func (s *stubTranscriber) ChunkSizeLimit() int                { return s.limit }

func (s *stubTranscriber) TranscribeChunk(_ context.Context, chunk []byte) (*ChunkResult, error) {
	call := int(s.calls.Add(1))
	if s.delayFor != nil {
		time.Sleep(s.delayFor(chunk))
	}
	if s.failFor != nil {
		if err := s.failFor(chunk, call); err != nil {
			return nil, err
		}
	}
	if s.resultFor != nil {
		return s.resultFor(chunk), nil
	}
	return &ChunkResult{Text: fmt.Sprintf("<%s>", chunk)}, nil
}

func fastService() *Service {
	return NewService(ServiceConfig{Concurrency: 4, MaxRetries: 3, BaseDelay: time.Millisecond}, nil)
}

func TestTranscribe_SingleChunk(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{limit: 1024}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("hello")}, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChunkCount != 1 {
		t.Errorf("expected 1 chunk, got %d", res.ChunkCount)
	}
	if res.Text != "<hello>" {
		t.Errorf("unexpected text: %q", res.Text)
	}
	if res.Provider != "stub" {
		t.Errorf("expected provider 'stub', got %q", res.Provider)
	}
	if res.SpeakerLabelsUsed {
		t.Error("expected no speaker labels")
	}
}

func TestTranscribe_OrderInvariantUnderReversedCompletion(t *testing.T) {
	svc := fastService()

	// Earlier chunks sleep longer, so completion order is the reverse
	// of submission order. The merged text must still be in original
	// order, identical to transcribing the stream as a single chunk.
	delays := map[string]time.Duration{"aaaa": 30 * time.Millisecond, "bbbb": 20 * time.Millisecond, "cccc": 10 * time.Millisecond, "dd": 0}
	stub := &stubTranscriber{
		limit:    4,
		delayFor: func(chunk []byte) time.Duration { return delays[string(chunk)] },
	}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("aaaabbbbccccdd")}, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "<aaaa> <bbbb> <cccc> <dd>" {
		t.Errorf("expected original order preserved, got %q", res.Text)
	}
	if res.ChunkCount != 4 {
		t.Errorf("expected 4 chunks, got %d", res.ChunkCount)
	}
}

func TestTranscribe_ConcatenatesInputBuffers(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{limit: 1024}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("part1-"), []byte("part2")}, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "<part1-part2>" {
		t.Errorf("expected concatenated stream, got %q", res.Text)
	}
}

func TestTranscribe_ChunkFailureAbortsEverything(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{
		limit: 4,
		failFor: func(chunk []byte, _ int) error {
			if string(chunk) == "bbbb" {
				return errors.New("provider exploded")
			}
			return nil
		},
	}

	_, err := svc.Transcribe(context.Background(), [][]byte{[]byte("aaaabbbbcccc")}, stub)
	if err == nil {
		t.Fatal("expected error when one chunk fails")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeChunkTranscription) {
		t.Errorf("expected chunk transcription error code, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["chunk_index"] != 1 {
		t.Errorf("expected failing chunk index 1, got %v", appErr.Details["chunk_index"])
	}
}

func TestTranscribe_RetriesTransientChunkFailure(t *testing.T) {
	svc := fastService()
	var failures atomic.Int32
	stub := &stubTranscriber{
		limit: 1024,
		failFor: func(_ []byte, _ int) error {
			if failures.Add(1) <= 2 {
				return errors.New("transient")
			}
			return nil
		},
	}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("audio")}, stub)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if res.Text != "<audio>" {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestTranscribe_DiarizedMerge(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{
		limit: 1024,
		resultFor: func(chunk []byte) *ChunkResult {
			return &ChunkResult{
				Text:            string(chunk),
				DurationSeconds: 12.5,
				Segments: []Segment{
					{Start: 0, End: 5, Text: "Opening statement.", Speaker: "Pro-remote"},
					{Start: 5, End: 10, Text: "Counterpoint.", Speaker: "Anti-remote"},
					{Start: 10, End: 12, Text: "Crosstalk."},
				},
			}
		},
	}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("audio")}, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SpeakerLabelsUsed {
		t.Error("expected speaker labels to be used")
	}
	lines := strings.Split(res.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), res.Text)
	}
	if lines[0] != "[Pro-remote]: Opening statement." {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[2] != "[unknown]: Crosstalk." {
		t.Errorf("unlabeled segment should fall back to unknown, got %q", lines[2])
	}
	if res.TotalDurationSeconds != 12.5 {
		t.Errorf("expected duration 12.5, got %v", res.TotalDurationSeconds)
	}
}

func TestTranscribe_PlainMergeWhenNoLabeledSegments(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{
		limit: 1024,
		resultFor: func(chunk []byte) *ChunkResult {
			// Segments without speakers must not trigger diarized rendering.
			return &ChunkResult{
				Text:     "plain text",
				Segments: []Segment{{Start: 0, End: 1, Text: "plain text"}},
			}
		},
	}

	res, err := svc.Transcribe(context.Background(), [][]byte{[]byte("audio")}, stub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpeakerLabelsUsed {
		t.Error("expected plain merge")
	}
	if res.Text != "plain text" {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestTranscribe_EmptyStream(t *testing.T) {
	svc := fastService()
	stub := &stubTranscriber{limit: 1024}

	_, err := svc.Transcribe(context.Background(), nil, stub)
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestTranscribe_BoundedConcurrency(t *testing.T) {
	svc := NewService(ServiceConfig{Concurrency: 2, MaxRetries: 1, BaseDelay: time.Millisecond}, nil)

	var current, peak atomic.Int32
	stub := &stubTranscriber{
		limit: 1,
		delayFor: func(_ []byte) time.Duration {
			now := current.Add(1)
			if now > peak.Load() {
				peak.Store(now)
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return 0
		},
	}

	if _, err := svc.Transcribe(context.Background(), [][]byte{make([]byte, 8)}, stub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent chunk calls, saw %d", peak.Load())
	}
}
