package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubProvider struct {
	name    string
	content string
	err     error
	lastReq CompletionRequest
}

func (s *stubProvider) Name() string                       { return s.name }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return true }
func (s *stubProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Content: s.content, Model: req.Model}, nil
}

func TestEvaluateStructured_PlainJSON(t *testing.T) {
	p := &stubProvider{name: "stub", content: `{"winner": "Pro-remote", "confidence": 85}`}

	var out struct {
		Winner     string  `json:"winner"`
		Confidence float64 `json:"confidence"`
	}
	err := EvaluateStructured(context.Background(), p, "system", "user", Options{Model: "gpt-4o"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != "Pro-remote" || out.Confidence != 85 {
		t.Errorf("unexpected result: %+v", out)
	}
	if p.lastReq.Model != "gpt-4o" {
		t.Errorf("expected model passed through, got %q", p.lastReq.Model)
	}
	if !strings.Contains(p.lastReq.SystemPrompt, "ONLY the JSON object") {
		t.Error("expected JSON instructions appended to system prompt")
	}
}

func TestEvaluateStructured_FencedJSON(t *testing.T) {
	p := &stubProvider{content: "```json\n{\"winner\": \"A\"}\n```"}

	var out struct {
		Winner string `json:"winner"`
	}
	if err := EvaluateStructured(context.Background(), p, "s", "u", Options{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != "A" {
		t.Errorf("expected winner A, got %q", out.Winner)
	}
}

func TestEvaluateStructured_JSONWithPreamble(t *testing.T) {
	p := &stubProvider{content: "Here is my evaluation:\n{\"winner\": \"B\"}\nHope that helps!"}

	var out struct {
		Winner string `json:"winner"`
	}
	if err := EvaluateStructured(context.Background(), p, "s", "u", Options{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Winner != "B" {
		t.Errorf("expected winner B, got %q", out.Winner)
	}
}

func TestEvaluateStructured_ProviderError(t *testing.T) {
	wantErr := errors.New("rate limited")
	p := &stubProvider{err: wantErr}

	var out map[string]any
	err := EvaluateStructured(context.Background(), p, "s", "u", Options{}, &out)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestEvaluateStructured_MalformedJSON(t *testing.T) {
	p := &stubProvider{content: "not json at all"}

	var out map[string]any
	if err := EvaluateStructured(context.Background(), p, "s", "u", Options{}, &out); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "sure: {\"a\":1} done", `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
