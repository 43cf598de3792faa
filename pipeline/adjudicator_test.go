package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Gajesh2007/ai-debate-judge/config"
	"github.com/Gajesh2007/ai-debate-judge/council"
	apperrors "github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/llm"
	"github.com/Gajesh2007/ai-debate-judge/observability"
	"github.com/Gajesh2007/ai-debate-judge/progress"
	"github.com/Gajesh2007/ai-debate-judge/storage"
	"github.com/Gajesh2007/ai-debate-judge/transcription"
)

// stageLLM routes calls by prompt role: moderation and formatting are
// identified by their system prompts, judge calls by model ID.
type stageLLM struct {
	mu         sync.Mutex
	moderation string
	transcript string
	judges     map[string]string // model -> judge evaluation JSON
}

func (s *stageLLM) Name() string                       { return "stage-mock" }
func (s *stageLLM) IsAvailable(_ context.Context) bool { return true }
func (s *stageLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case strings.Contains(req.SystemPrompt, "content moderator"):
		return &llm.CompletionResponse{Content: s.moderation}, nil
	case strings.Contains(req.SystemPrompt, "transcript formatter"):
		return &llm.CompletionResponse{Content: s.transcript}, nil
	default:
		return &llm.CompletionResponse{Content: s.judges[req.Model]}, nil
	}
}

func judgeJSON(t *testing.T, winner string) string {
	t.Helper()
	b, err := json.Marshal(council.JudgeEvaluation{
		Winner:     winner,
		Confidence: 80,
		Scores: map[string]council.SpeakerScore{
			"Pro-remote":  {SpeakerID: "Pro-remote", Argumentation: 8, Evidence: 8, Delivery: 7, Rebuttal: 8, Total: 8},
			"Anti-remote": {SpeakerID: "Anti-remote", Argumentation: 6, Evidence: 7, Delivery: 7, Rebuttal: 6, Total: 6.5},
		},
		Reasoning: "weighed the arguments",
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

const transcriptJSON = `{
  "topic": "Should remote work be default?",
  "speakers": [
    {"id": "Pro-remote", "position": "pro", "speakingOrder": 1},
    {"id": "Anti-remote", "position": "con", "speakingOrder": 2}
  ],
  "segments": [
    {"speakerId": "Pro-remote", "text": "Remote work boosts productivity and widens hiring."},
    {"speakerId": "Anti-remote", "text": "Offices build culture and speed up collaboration."}
  ],
  "summary": "A debate about defaulting to remote work."
}`

func testConfig() *config.Config {
	cfg := &config.Config{
		Signer: config.SignerConfig{Secret: "pipeline-test-signing-secret"},
		Council: config.CouncilConfig{
			Judges: []config.JudgeConfig{
				{Name: "judge-0", Model: "model-0"},
				{Name: "judge-1", Model: "model-1"},
				{Name: "judge-2", Model: "model-2"},
				{Name: "judge-3", Model: "model-3"},
				{Name: "judge-4", Model: "model-4"},
			},
			MaxRetries: 1,
			BaseDelay:  time.Millisecond,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func fiveJudgeLLM(t *testing.T) *stageLLM {
	return &stageLLM{
		moderation: `{"appropriate": true}`,
		transcript: transcriptJSON,
		judges: map[string]string{
			"model-0": judgeJSON(t, "Pro-remote"),
			"model-1": judgeJSON(t, "Pro-remote"),
			"model-2": judgeJSON(t, "Pro-remote"),
			"model-3": judgeJSON(t, "Pro-remote"),
			"model-4": judgeJSON(t, "Anti-remote"),
		},
	}
}

func TestAdjudicate_EndToEnd(t *testing.T) {
	store := storage.NewMemoryStore()
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{Store: store})
	if err != nil {
		t.Fatal(err)
	}

	res, err := adj.Adjudicate(context.Background(), Input{
		Topic:          "Should remote work be default?",
		TranscriptText: "Pro-remote: productivity. Anti-remote: culture.",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := res.Verdict
	if v.FinalWinner != "Pro-remote" {
		t.Errorf("expected Pro-remote to win, got %q", v.FinalWinner)
	}
	if v.Unanimity {
		t.Error("4-1 split must not be unanimous")
	}
	if v.VoteCount["Pro-remote"] != 4 || v.VoteCount["Anti-remote"] != 1 {
		t.Errorf("unexpected vote count: %v", v.VoteCount)
	}
	if !strings.Contains(v.ConsensusSummary, "4-1") {
		t.Errorf("expected 4-1 split in summary, got %q", v.ConsensusSummary)
	}

	// The signed verdict must verify bit-for-bit against the same
	// verdict object.
	check, err := adj.Verifier().VerifySigned(res.SignedVerdict)
	if err != nil {
		t.Fatal(err)
	}
	if !check.Valid {
		t.Errorf("expected signed verdict to verify, got %+v", check)
	}

	if res.RecordID == "" {
		t.Fatal("expected a persisted record ID")
	}
	rec, err := store.Load(context.Background(), res.RecordID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.SignedVerdict.Verdict.FinalWinner != "Pro-remote" {
		t.Errorf("persisted record has wrong winner %q", rec.SignedVerdict.Verdict.FinalWinner)
	}
}

func TestAdjudicate_RejectsMissingInput(t *testing.T) {
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := adj.Adjudicate(context.Background(), Input{TranscriptText: "text"}, nil); !apperrors.HasCode(err, apperrors.ErrCodeMissingField) {
		t.Errorf("expected missing field error for missing topic, got %v", err)
	}
	if _, err := adj.Adjudicate(context.Background(), Input{Topic: "t"}, nil); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input for missing content, got %v", err)
	}
}

func TestAdjudicate_ModerationRejectionStopsRun(t *testing.T) {
	m := fiveJudgeLLM(t)
	m.moderation = `{"appropriate": false, "reason": "harassment", "flags": ["harassment"]}`

	adj, err := New(testConfig(), m, Options{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = adj.Adjudicate(context.Background(), Input{
		Topic:          "topic",
		TranscriptText: "offensive content",
	}, nil)
	if !apperrors.HasCode(err, apperrors.ErrCodeModerationRejected) {
		t.Fatalf("expected moderation rejection, got %v", err)
	}
}

func TestAdjudicate_PersistenceFailureIsNotFatal(t *testing.T) {
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{Store: failingStore{}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := adj.Adjudicate(context.Background(), Input{
		Topic:          "Should remote work be default?",
		TranscriptText: "some debate text",
	}, nil)
	if err != nil {
		t.Fatalf("persistence failure must not fail the run, got %v", err)
	}
	if res.RecordID != "" {
		t.Errorf("expected empty record ID after failed save, got %q", res.RecordID)
	}
	if res.SignedVerdict == nil {
		t.Error("expected the verdict to still be produced")
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, *storage.Record) (string, error) {
	return "", context.DeadlineExceeded
}
func (failingStore) Load(context.Context, string) (*storage.Record, error) {
	return nil, context.DeadlineExceeded
}

// chunkEcho transcribes each chunk to a fixed phrase so audio input can
// flow through the full pipeline.
type chunkEcho struct{}

func (chunkEcho) Name() string                       { return "echo" }
func (chunkEcho) IsAvailable(_ context.Context) bool { return true }
func (chunkEcho) ChunkSizeLimit() int                { return 4 }
func (chunkEcho) TranscribeChunk(_ context.Context, chunk []byte) (*transcription.ChunkResult, error) {
	return &transcription.ChunkResult{Text: string(chunk), DurationSeconds: 1}, nil
}

func TestAdjudicate_AudioInput(t *testing.T) {
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{Transcriber: chunkEcho{}})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var steps []progress.Step
	sink := progress.SinkFunc(func(e progress.Event) {
		mu.Lock()
		steps = append(steps, e.Step)
		mu.Unlock()
	})

	res, err := adj.Adjudicate(context.Background(), Input{
		Topic:        "Should remote work be default?",
		AudioBuffers: [][]byte{[]byte("abcdefgh")},
	}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transcription == nil {
		t.Fatal("expected a transcription result for audio input")
	}
	if res.Transcription.ChunkCount != 2 {
		t.Errorf("expected 2 chunks for 8 bytes at limit 4, got %d", res.Transcription.ChunkCount)
	}

	if steps[0] != progress.StepTranscribing {
		t.Errorf("expected the run to start with transcription, got %v", steps[0])
	}
	last := steps[len(steps)-1]
	if last != progress.StepComplete {
		t.Errorf("expected the run to end with complete, got %v", last)
	}
}

func TestAdjudicate_RecordsJudgeAndChunkMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{Transcriber: chunkEcho{}, Metrics: metrics})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := adj.Adjudicate(context.Background(), Input{
		Topic:        "Should remote work be default?",
		AudioBuffers: [][]byte{[]byte("abcdefgh")},
	}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	if sums["council.judge.total"] != 5 {
		t.Errorf("expected 5 judge outcomes recorded, got %d", sums["council.judge.total"])
	}
	if sums["transcription.chunk.total"] != 2 {
		t.Errorf("expected 2 chunk outcomes recorded, got %d", sums["transcription.chunk.total"])
	}
}

func TestAdjudicate_SanitizesTopic(t *testing.T) {
	store := storage.NewMemoryStore()
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{Store: store})
	if err != nil {
		t.Fatal(err)
	}

	res, err := adj.Adjudicate(context.Background(), Input{
		Topic:          "  Should remote\x00 work be default?\x1b ",
		TranscriptText: "some debate text",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, err := store.Load(context.Background(), res.RecordID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Topic != "Should remote work be default?" {
		t.Errorf("expected sanitized topic in the record, got %q", rec.Topic)
	}

	// A topic that is nothing but control characters is missing.
	_, err = adj.Adjudicate(context.Background(), Input{
		Topic:          "\x00\x01 ",
		TranscriptText: "some debate text",
	}, nil)
	if !apperrors.HasCode(err, apperrors.ErrCodeMissingField) {
		t.Errorf("expected missing field for control-only topic, got %v", err)
	}
}

func TestAdjudicate_AudioWithoutTranscriber(t *testing.T) {
	adj, err := New(testConfig(), fiveJudgeLLM(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = adj.Adjudicate(context.Background(), Input{
		Topic:        "topic",
		AudioBuffers: [][]byte{[]byte("audio")},
	}, nil)
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
