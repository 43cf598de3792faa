package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Options carries per-call evaluation options.
type Options struct {
	// Model selects the judge/formatter model for this call.
	Model string
	// Temperature overrides the provider default when non-zero.
	Temperature float64
	// MaxTokens limits the response length when non-zero.
	MaxTokens int
}

// EvaluateStructured sends system + user prompts expecting JSON and
// unmarshals the response into result. It appends strict formatting
// instructions to the system prompt and strips markdown fences from
// the model output before decoding.
func EvaluateStructured(ctx context.Context, p Provider, system, user string, opts Options, result any) error {
	system += "\n\nIMPORTANT: Respond with ONLY the JSON object. " +
		"No markdown, no code blocks, no explanations. " +
		"Start with { and end with }."

	resp, err := p.Complete(ctx, CompletionRequest{
		Model:        opts.Model,
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
	})
	if err != nil {
		return err
	}

	content := extractJSON(resp.Content)
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return fmt.Errorf("llm: unmarshal structured response: %w", err)
	}
	return nil
}

// extractJSON pulls a JSON object from LLM output that may contain markdown fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Strip markdown code fences
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Find first { and last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
