package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/llm"
	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/resilience"
)

const formatterSystemPrompt = `You are a debate transcript formatter. Given raw debate text, produce a normalized transcript:
- Identify each distinct speaker and assign a short stable id.
- Give each speaker a position label and a speaking order.
- Split the text into ordered segments attributed to those speaker ids.
- Write a 2-3 sentence summary of the debate.
Every segment's speakerId MUST appear in the speakers list.`

// FormatterConfig configures the transcript formatter.
type FormatterConfig struct {
	// Model selects the formatting model.
	Model string
	// MaxRetries is the retry budget for the structured call (default 2).
	MaxRetries int
	// BaseDelay is the retry base delay (default 1s).
	BaseDelay time.Duration
}

// ApplyDefaults fills zero-valued fields.
func (c *FormatterConfig) ApplyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
}

// Formatter turns raw transcript text into a normalized Transcript via
// one retried structured call. There is no local heuristic fallback:
// on persistent failure the stage fails.
type Formatter struct {
	cfg FormatterConfig
	llm llm.Provider
	log *logger.Logger
}

// NewFormatter creates a transcript formatter.
func NewFormatter(cfg FormatterConfig, p llm.Provider, log *logger.Logger) *Formatter {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Formatter{cfg: cfg, llm: p, log: log.WithComponent("formatter")}
}

// Format normalizes rawText into a Transcript for the given topic.
// A structurally inconsistent result (segment referencing an
// undeclared speaker) is treated as a retryable failure.
func (f *Formatter) Format(ctx context.Context, rawText, topic string) (*Transcript, error) {
	user := fmt.Sprintf("Topic: %s\n\nRaw transcript:\n%s", topic, rawText)

	retryCfg := resilience.RetryConfig{
		MaxRetries: f.cfg.MaxRetries,
		BaseDelay:  f.cfg.BaseDelay,
		Backoff:    resilience.BackoffLinear,
		OnRetry: func(attempt int, err error) {
			f.log.Warn("transcript formatting retry", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
		},
	}

	result, err := resilience.Retry(ctx, retryCfg, func() (*Transcript, error) {
		var tr Transcript
		if err := llm.EvaluateStructured(ctx, f.llm, formatterSystemPrompt, user,
			llm.Options{Model: f.cfg.Model}, &tr); err != nil {
			return nil, err
		}
		tr.Topic = topic
		if err := tr.Validate(); err != nil {
			return nil, err
		}
		return &tr, nil
	})
	if err != nil {
		return nil, errors.Formatting(err)
	}

	f.log.Info("transcript formatted", logger.Fields(
		"speakers", len(result.Speakers),
		"segments", len(result.Segments),
	))
	return result, nil
}
