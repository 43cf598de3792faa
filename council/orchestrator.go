package council

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/llm"
	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/progress"
	"github.com/Gajesh2007/ai-debate-judge/resilience"
	"github.com/Gajesh2007/ai-debate-judge/transcript"
	"github.com/Gajesh2007/ai-debate-judge/util"
	"github.com/Gajesh2007/ai-debate-judge/validation"
)

// Quorum is the minimum number of successful judgments required to
// produce a verdict, regardless of council size.
const Quorum = 2

const judgeSystemPrompt = `You are an impartial debate judge. Evaluate the debate transcript and decide which speaker won.
Score every speaker 0-10 on argumentation, evidence, delivery, and rebuttal, plus an overall total.
Report your confidence in the outcome from 0 to 100, explain your reasoning, and list the key moments that shaped the result.
Judge the arguments on their merits; never let the topic's popularity decide the winner.`

// Config configures the council orchestrator.
type Config struct {
	// Judges is the council roster.
	Judges []Judge
	// MaxRetries is the per-judge retry budget (default 5). Judge
	// calls are the most expensive and the most valuable to save.
	MaxRetries int
	// BaseDelay is the per-judge retry base delay (default 2s).
	BaseDelay time.Duration
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 2 * time.Second
	}
}

// Orchestrator fans out one evaluation per judge, tolerates partial
// failure under the quorum rule, and aggregates the results.
type Orchestrator struct {
	cfg  Config
	llm  llm.Provider
	sink progress.Sink
	log  *logger.Logger
}

// NewOrchestrator creates a council orchestrator.
func NewOrchestrator(cfg Config, p llm.Provider, sink progress.Sink, log *logger.Logger) *Orchestrator {
	cfg.ApplyDefaults()
	if sink == nil {
		sink = progress.Discard
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Orchestrator{cfg: cfg, llm: p, sink: sink, log: log.WithComponent("council")}
}

// judgeOutcome travels from a judge goroutine to the aggregating
// consumer. Exactly one outcome is sent per judge.
type judgeOutcome struct {
	index int
	eval  *JudgeEvaluation
	err   error
}

// Evaluate runs the full council against the transcript.
//
// All judges launch concurrently; the count is small and fixed, so no
// concurrency cap is applied. No judge cancels its siblings: every
// outcome is collected before aggregation. The single consumer loop is
// the only writer of the completed counter and judgment list, so
// progress events never race.
func (o *Orchestrator) Evaluate(ctx context.Context, tr *transcript.Transcript) (*CouncilVerdict, error) {
	total := len(o.cfg.Judges)
	if total == 0 {
		return nil, errors.Internal("council: no judges configured")
	}

	states := make([]progress.JudgeStatus, total)
	for i, judge := range o.cfg.Judges {
		states[i] = progress.JudgeStatus{Name: displayName(judge), State: "pending"}
	}

	outcomes := make(chan judgeOutcome, total)
	for i, judge := range o.cfg.Judges {
		states[i].State = "evaluating"
		o.sink.Publish(progress.Event{
			Step:       progress.StepJudgeStarted,
			Message:    fmt.Sprintf("Judge %s is evaluating the debate", displayName(judge)),
			Judge:      displayName(judge),
			JudgeIndex: i,
			TotalCount: total,
			Judges:     snapshotJudges(states),
		})
		go func(idx int, j Judge) {
			eval, err := o.evaluateJudge(ctx, j, tr)
			outcomes <- judgeOutcome{index: idx, eval: eval, err: err}
		}(i, judge)
	}

	// Evaluations are collected by roster index so that aggregation sees
	// them in a deterministic order regardless of completion order.
	evals := make([]*JudgeEvaluation, total)
	completed := 0
	failed := 0
	for received := 0; received < total; received++ {
		out := <-outcomes
		judge := o.cfg.Judges[out.index]
		if out.err != nil {
			failed++
			states[out.index].State = "failed"
			o.log.Error("judge failed after retries", logger.Fields(
				logger.FieldJudge, displayName(judge),
				logger.FieldModel, judge.Model,
				logger.FieldError, out.err.Error(),
			))
			o.sink.Publish(progress.Event{
				Step:       progress.StepJudgeFailed,
				Message:    fmt.Sprintf("Judge %s failed to produce an evaluation", displayName(judge)),
				Judge:      displayName(judge),
				JudgeIndex: out.index,
				TotalCount: total,
				Completed:  completed,
				Judges:     snapshotJudges(states),
			})
			continue
		}
		completed++
		evals[out.index] = out.eval
		states[out.index].State = "completed"
		o.sink.Publish(progress.Event{
			Step:       progress.StepJudgeCompleted,
			Message:    fmt.Sprintf("Judge %s completed its evaluation", displayName(judge)),
			Judge:      displayName(judge),
			JudgeIndex: out.index,
			TotalCount: total,
			Completed:  completed,
			Judges:     snapshotJudges(states),
		})
	}

	if completed < Quorum {
		return nil, errors.InsufficientQuorum(completed, Quorum, total)
	}

	judgments := make([]IndividualJudgment, 0, completed)
	for i, eval := range evals {
		if eval != nil {
			judgments = append(judgments, IndividualJudgment{
				JudgeName:  displayName(o.cfg.Judges[i]),
				Evaluation: *eval,
			})
		}
	}

	o.sink.Publish(progress.Event{
		Step:       progress.StepAggregating,
		Message:    "Aggregating council votes and scores",
		TotalCount: total,
		Completed:  completed,
		Judges:     snapshotJudges(states),
	})

	verdict := Aggregate(judgments, failed)
	o.log.Info("council verdict reached", logger.Fields(
		"winner", verdict.FinalWinner,
		"votes", verdict.VoteCount,
		"unanimity", verdict.Unanimity,
		"failed_judges", failed,
	))
	return verdict, nil
}

// displayName returns the judge's roster name, falling back to its
// model ID when the name is unset.
func displayName(j Judge) string {
	return util.Coalesce(j.Name, j.Model)
}

// snapshotJudges copies the live state slice so sinks may retain the
// event after the loop mutates the original.
func snapshotJudges(states []progress.JudgeStatus) []progress.JudgeStatus {
	out := make([]progress.JudgeStatus, len(states))
	copy(out, states)
	return out
}

// evaluateJudge runs one judge's retried structured call. A
// structurally invalid result counts as a retryable failure. An
// exhausted retry budget surfaces as a RETRY_EXHAUSTED application
// error carrying the attempt count.
func (o *Orchestrator) evaluateJudge(ctx context.Context, judge Judge, tr *transcript.Transcript) (*JudgeEvaluation, error) {
	user := fmt.Sprintf("Topic: %s\n\nSpeakers: %v\n\nTranscript:\n%s\n\nSummary: %s",
		tr.Topic, tr.SpeakerIDs(), tr.Text(), tr.Summary)

	retryCfg := resilience.RetryConfig{
		MaxRetries: o.cfg.MaxRetries,
		BaseDelay:  o.cfg.BaseDelay,
		Backoff:    resilience.BackoffExponential,
		OnRetry: func(attempt int, err error) {
			o.log.Warn("judge evaluation retry", logger.Fields(
				logger.FieldJudge, judge.Name,
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
		},
	}

	eval, err := resilience.Retry(ctx, retryCfg, func() (*JudgeEvaluation, error) {
		var eval JudgeEvaluation
		err := llm.EvaluateStructured(ctx, o.llm, judgeSystemPrompt, user, llm.Options{
			Model:       judge.Model,
			Temperature: judge.Temperature,
		}, &eval)
		if err != nil {
			return nil, err
		}
		if err := validation.Validate(&eval); err != nil {
			return nil, fmt.Errorf("structurally invalid evaluation: %w", err)
		}
		return &eval, nil
	})
	if err != nil {
		var exhausted *resilience.ExhaustedError
		if stderrors.As(err, &exhausted) {
			return nil, errors.RetryExhausted("judge "+displayName(judge), exhausted.Attempts, exhausted.LastErr)
		}
		return nil, err
	}
	return eval, nil
}
