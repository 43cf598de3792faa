// Package moderation screens raw transcript content before the
// pipeline spends money on formatting and judging.
//
// The gate makes one retried structured call and returns a Verdict.
// Rejection is a normal result, not an error; the pipeline turns it
// into a hard stop.
package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/llm"
	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/resilience"
	"github.com/Gajesh2007/ai-debate-judge/util"
)

// maxExcerptLen caps the transcript excerpt sent to the classifier.
// A cost/latency trade-off, not a completeness guarantee.
const maxExcerptLen = 5000

const moderationSystemPrompt = `You are a content moderator for a debate platform. Classify the debate content as appropriate or inappropriate for evaluation. Flag hate speech, harassment, explicit threats, and sexual content involving minors. Vigorous disagreement, strong language, and controversial topics are appropriate.`

// Verdict is the moderation outcome.
type Verdict struct {
	// Appropriate reports whether processing may continue.
	Appropriate bool `json:"appropriate"`
	// Reason explains a rejection, empty when appropriate.
	Reason string `json:"reason,omitempty"`
	// Flags lists the categories that triggered, possibly empty.
	Flags []string `json:"flags,omitempty"`
}

// GateConfig configures the moderation gate.
type GateConfig struct {
	// Model selects the moderation model.
	Model string
	// MaxRetries is the retry budget for the structured call (default 2).
	MaxRetries int
	// BaseDelay is the retry base delay (default 1s).
	BaseDelay time.Duration
}

// ApplyDefaults fills zero-valued fields.
func (c *GateConfig) ApplyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
}

// Gate approves or rejects raw transcript content.
type Gate struct {
	cfg GateConfig
	llm llm.Provider
	log *logger.Logger
}

// NewGate creates a moderation gate.
func NewGate(cfg GateConfig, p llm.Provider, log *logger.Logger) *Gate {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Gate{cfg: cfg, llm: p, log: log.WithComponent("moderation")}
}

// Moderate classifies the transcript. Whitespace runs are collapsed
// before truncation so formatting noise does not eat into the excerpt
// budget; only the first 5000 characters of the result are examined.
// A failed call after retries propagates as an error; a rejection is
// returned as a normal Verdict.
func (g *Gate) Moderate(ctx context.Context, transcriptText, topic string) (*Verdict, error) {
	excerpt := util.Truncate(util.CollapseWhitespace(transcriptText), maxExcerptLen)
	user := fmt.Sprintf("Topic: %s\n\nTranscript excerpt:\n%s", topic, excerpt)

	retryCfg := resilience.RetryConfig{
		MaxRetries: g.cfg.MaxRetries,
		BaseDelay:  g.cfg.BaseDelay,
		Backoff:    resilience.BackoffLinear,
		OnRetry: func(attempt int, err error) {
			g.log.Warn("moderation retry", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
		},
	}

	verdict, err := resilience.Retry(ctx, retryCfg, func() (*Verdict, error) {
		var v Verdict
		if err := llm.EvaluateStructured(ctx, g.llm, moderationSystemPrompt, user,
			llm.Options{Model: g.cfg.Model}, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return nil, errors.ExternalService("moderation", err)
	}

	if !verdict.Appropriate {
		g.log.Warn("content rejected by moderation", logger.Fields(
			"reason", verdict.Reason,
			"flags", verdict.Flags,
		))
	}
	return verdict, nil
}
