package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gajesh2007/ai-debate-judge/config"
	"github.com/Gajesh2007/ai-debate-judge/council"
	"github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/llm"
	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/moderation"
	"github.com/Gajesh2007/ai-debate-judge/observability"
	"github.com/Gajesh2007/ai-debate-judge/progress"
	"github.com/Gajesh2007/ai-debate-judge/signing"
	"github.com/Gajesh2007/ai-debate-judge/storage"
	"github.com/Gajesh2007/ai-debate-judge/transcript"
	"github.com/Gajesh2007/ai-debate-judge/transcription"
	"github.com/Gajesh2007/ai-debate-judge/util"
)

// Input is one adjudication request. Either TranscriptText or
// AudioBuffers must be supplied, along with the topic.
type Input struct {
	Topic          string
	TranscriptText string
	AudioBuffers   [][]byte
	Metadata       map[string]string
}

// Result is the outcome of one adjudication run.
type Result struct {
	RunID         string
	Transcription *transcription.Result
	Moderation    *moderation.Verdict
	Transcript    *transcript.Transcript
	Verdict       *council.CouncilVerdict
	SignedVerdict *signing.SignedVerdict
	// RecordID is the persisted record's ID, empty when persistence was
	// skipped or failed (persistence is best-effort).
	RecordID string
}

// Options carries the optional collaborators of an Adjudicator.
type Options struct {
	// Transcriber handles audio input. Runs with audio input fail with
	// InvalidInput when it is nil.
	Transcriber transcription.ChunkTranscriber
	// Store persists finished records. Nil disables persistence.
	Store storage.Store
	// Metrics records run/stage instrumentation. Nil disables it.
	Metrics *observability.Metrics
	// Logger overrides the global logger.
	Logger *logger.Logger
}

// Adjudicator wires the pipeline stages together. Construct once at
// startup; Adjudicate is safe for concurrent runs.
type Adjudicator struct {
	cfg           *config.Config
	llm           llm.Provider
	transcription *transcription.Service
	gate          *moderation.Gate
	formatter     *transcript.Formatter
	signer        *signing.Signer
	verifier      *signing.Verifier
	transcriber   transcription.ChunkTranscriber
	store         storage.Store
	metrics       *observability.Metrics
	log           *logger.Logger
}

// New creates an Adjudicator from configuration. The signing key is
// derived here, once, and held for the process lifetime.
func New(cfg *config.Config, provider llm.Provider, opts Options) (*Adjudicator, error) {
	if cfg == nil {
		return nil, errors.Internal("pipeline: nil config")
	}
	if provider == nil {
		return nil, errors.Internal("pipeline: nil llm provider")
	}

	signer, err := signing.NewSigner(cfg.Signer.Secret)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("pipeline")

	return &Adjudicator{
		cfg: cfg,
		llm: provider,
		transcription: transcription.NewService(transcription.ServiceConfig{
			Concurrency: cfg.Transcription.Concurrency,
			MaxRetries:  cfg.Transcription.MaxRetries,
			BaseDelay:   cfg.Transcription.BaseDelay,
		}, log),
		gate:        moderation.NewGate(moderation.GateConfig{}, provider, log),
		formatter:   transcript.NewFormatter(transcript.FormatterConfig{}, provider, log),
		signer:      signer,
		verifier:    signing.NewVerifier(signer),
		transcriber: opts.Transcriber,
		store:       opts.Store,
		metrics:     opts.Metrics,
		log:         log,
	}, nil
}

// Verifier returns the verifier anchored to this process's signer.
func (a *Adjudicator) Verifier() *signing.Verifier {
	return a.verifier
}

// Adjudicate runs the full pipeline for one debate. Progress events
// flow to sink as stages advance; pass nil to discard them.
func (a *Adjudicator) Adjudicate(ctx context.Context, input Input, sink progress.Sink) (*Result, error) {
	if sink == nil {
		sink = progress.Discard
	}
	// Topics arrive from user input and end up in prompts, logs, and
	// signed records; strip control characters up front.
	input.Topic = util.SanitizeString(input.Topic)
	if input.Topic == "" {
		return nil, errors.MissingField("topic")
	}
	if input.TranscriptText == "" && len(input.AudioBuffers) == 0 {
		return nil, errors.InvalidInput("either a transcript or audio buffers must be provided")
	}

	runID := uuid.NewString()
	log := a.log.WithFields(logger.Fields(logger.FieldRunID, runID))
	started := time.Now()

	ctx, span := observability.StartSpan(ctx, observability.SpanAdjudicate)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
	observability.SetSpanAttribute(ctx, observability.AttrTopic, input.Topic)

	if a.metrics != nil {
		a.metrics.RecordRunStart(ctx)
	}
	status := "ok"
	defer func() {
		if a.metrics != nil {
			a.metrics.RecordRunEnd(ctx, status, time.Since(started))
		}
	}()

	result := &Result{RunID: runID}
	log.Info("adjudication started", logger.Fields(
		"topic", input.Topic,
		"has_audio", len(input.AudioBuffers) > 0,
	))

	rawText, err := a.resolveRawText(ctx, input, sink, result)
	if err != nil {
		status = "error"
		return nil, a.fail(ctx, sink, err)
	}

	if err := a.moderate(ctx, rawText, input.Topic, sink, result); err != nil {
		status = "rejected"
		return nil, a.fail(ctx, sink, err)
	}

	sink.Publish(progress.Event{Step: progress.StepFormatting, Message: "Formatting transcript", Progress: 40})
	tr, err := runStage(a, ctx, observability.SpanFormatting, func(ctx context.Context) (*transcript.Transcript, error) {
		return a.formatter.Format(ctx, rawText, input.Topic)
	})
	if err != nil {
		status = "error"
		return nil, a.fail(ctx, sink, err)
	}
	result.Transcript = tr

	verdict, err := runStage(a, ctx, observability.SpanCouncil, func(ctx context.Context) (*council.CouncilVerdict, error) {
		councilSink := sink
		if a.metrics != nil {
			councilSink = &judgeMetricsSink{ctx: ctx, next: sink, metrics: a.metrics}
		}
		orch := council.NewOrchestrator(council.Config{
			Judges:     a.judges(),
			MaxRetries: a.cfg.Council.MaxRetries,
			BaseDelay:  a.cfg.Council.BaseDelay,
		}, a.llm, councilSink, log)
		return orch.Evaluate(ctx, tr)
	})
	if err != nil {
		status = "error"
		return nil, a.fail(ctx, sink, err)
	}
	result.Verdict = verdict
	observability.SetSpanAttribute(ctx, observability.AttrWinner, verdict.FinalWinner)
	observability.SetSpanAttribute(ctx, observability.AttrUnanimity, verdict.Unanimity)

	sink.Publish(progress.Event{Step: progress.StepSigning, Message: "Signing verdict", Progress: 90})
	signed, err := runStage(a, ctx, observability.SpanSigning, func(_ context.Context) (*signing.SignedVerdict, error) {
		return a.signer.Sign(verdict)
	})
	if err != nil {
		status = "error"
		return nil, a.fail(ctx, sink, err)
	}
	result.SignedVerdict = signed

	result.RecordID = a.persist(ctx, input, result, log)

	sink.Publish(progress.Event{
		Step:     progress.StepComplete,
		Message:  fmt.Sprintf("Verdict: %s", verdict.FinalWinner),
		Progress: 100,
	})
	log.Info("adjudication complete", logger.Fields(
		"winner", verdict.FinalWinner,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	return result, nil
}

// resolveRawText returns the raw transcript text, transcribing audio
// input when no text was supplied.
func (a *Adjudicator) resolveRawText(ctx context.Context, input Input, sink progress.Sink, result *Result) (string, error) {
	if input.TranscriptText != "" {
		return input.TranscriptText, nil
	}
	if a.transcriber == nil {
		return "", errors.InvalidInput("audio input supplied but no transcriber is configured")
	}

	sink.Publish(progress.Event{Step: progress.StepTranscribing, Message: "Transcribing audio", Progress: 10})
	res, err := runStage(a, ctx, observability.SpanTranscription, func(ctx context.Context) (*transcription.Result, error) {
		return a.transcription.Transcribe(ctx, input.AudioBuffers, a.transcriber)
	})
	if err != nil {
		if a.metrics != nil && errors.HasCode(err, errors.ErrCodeChunkTranscription) {
			a.metrics.RecordChunk(ctx, "failed")
		}
		return "", err
	}
	if a.metrics != nil {
		for i := 0; i < res.ChunkCount; i++ {
			a.metrics.RecordChunk(ctx, "ok")
		}
	}
	observability.SetSpanAttribute(ctx, observability.AttrChunkCount, res.ChunkCount)
	result.Transcription = res
	return res.Text, nil
}

// moderate runs the gate and turns a rejection into a hard stop.
func (a *Adjudicator) moderate(ctx context.Context, rawText, topic string, sink progress.Sink, result *Result) error {
	sink.Publish(progress.Event{Step: progress.StepModerating, Message: "Checking content", Progress: 25})
	verdict, err := runStage(a, ctx, observability.SpanModeration, func(ctx context.Context) (*moderation.Verdict, error) {
		return a.gate.Moderate(ctx, rawText, topic)
	})
	if err != nil {
		return err
	}
	result.Moderation = verdict

	if !verdict.Appropriate {
		if a.metrics != nil {
			a.metrics.RecordModerationRejection(ctx, verdict.Flags)
		}
		sink.Publish(progress.Event{
			Step:       progress.StepModerating,
			Message:    "Content rejected by moderation",
			Progress:   25,
			Moderation: verdict.Reason,
		})
		return errors.ModerationRejected(verdict.Reason, verdict.Flags)
	}
	return nil
}

// persist saves the finished record best-effort. A failure is logged
// and swallowed; the verdict is still returned to the caller.
func (a *Adjudicator) persist(ctx context.Context, input Input, result *Result, log *logger.Logger) string {
	if a.store == nil {
		return ""
	}
	id, err := a.store.Save(ctx, &storage.Record{
		ID:            result.RunID,
		CreatedAt:     time.Now().UTC(),
		Topic:         input.Topic,
		Transcript:    result.Transcript,
		SignedVerdict: result.SignedVerdict,
		Metadata:      input.Metadata,
	})
	if err != nil {
		log.Warn("verdict persistence failed", logger.Fields(logger.FieldError, err.Error()))
		return ""
	}
	return id
}

// runStage wraps one stage in a span and stage metrics.
func runStage[T any](a *Adjudicator, ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := observability.StartSpan(ctx, name)
	defer span.End()
	started := time.Now()

	out, err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	if a.metrics != nil {
		a.metrics.RecordStage(ctx, name, status, time.Since(started))
	}
	return out, err
}

// judgeMetricsSink counts judge outcomes as their progress events pass
// through, keeping the orchestrator free of instrumentation plumbing.
type judgeMetricsSink struct {
	ctx     context.Context
	next    progress.Sink
	metrics *observability.Metrics
}

func (s *judgeMetricsSink) Publish(e progress.Event) {
	switch e.Step {
	case progress.StepJudgeCompleted:
		s.metrics.RecordJudge(s.ctx, e.Judge, "ok")
	case progress.StepJudgeFailed:
		s.metrics.RecordJudge(s.ctx, e.Judge, "failed")
	}
	s.next.Publish(e)
}

func (a *Adjudicator) fail(ctx context.Context, sink progress.Sink, err error) error {
	observability.SetSpanError(ctx, err)
	sink.Publish(progress.Event{Step: progress.StepError, Message: err.Error()})
	return err
}

func (a *Adjudicator) judges() []council.Judge {
	judges := make([]council.Judge, len(a.cfg.Council.Judges))
	for i, j := range a.cfg.Council.Judges {
		judges[i] = council.Judge{Name: j.Name, Model: j.Model, Temperature: j.Temperature}
	}
	return judges
}
