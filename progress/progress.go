// Package progress defines the event model through which the pipeline
// reports live status to its caller. The transport (SSE, polling) is a
// pluggable Sink consumer; the orchestrator only requires ordered,
// at-least-once delivery.
package progress

// Step identifies a pipeline stage transition.
type Step string

// Pipeline steps, in rough control-flow order.
const (
	StepTranscribing   Step = "transcribing"
	StepModerating     Step = "moderating"
	StepFormatting     Step = "formatting"
	StepJudgeStarted   Step = "judge_started"
	StepJudgeCompleted Step = "judge_completed"
	StepJudgeFailed    Step = "judge_failed"
	StepAggregating    Step = "aggregating"
	StepSigning        Step = "signing"
	StepComplete       Step = "complete"
	StepError          Step = "error"
)

// JudgeStatus is a point-in-time snapshot of one judge.
type JudgeStatus struct {
	Name string `json:"name"`
	// State is one of pending, evaluating, completed, failed.
	State string `json:"state"`
}

// Event is a single progress report. Judge events additionally carry
// which judge fired, its index, the council size, and the count of
// judges that have completed successfully so far.
type Event struct {
	Step    Step   `json:"step"`
	Message string `json:"message"`
	// Progress is a coarse 0-100 indicator for UI consumption.
	Progress int `json:"progress"`

	Judge      string `json:"judge,omitempty"`
	JudgeIndex int    `json:"judgeIndex,omitempty"`
	TotalCount int    `json:"totalCount,omitempty"`
	// Completed is the monotonically increasing count of successful
	// judges within one orchestration run.
	Completed int `json:"completed,omitempty"`

	Judges []JudgeStatus `json:"judges,omitempty"`
	// Moderation carries the moderation summary on moderating events.
	Moderation string `json:"moderation,omitempty"`
}

// Sink receives progress events. Implementations must tolerate
// concurrent calls: judge events fire from concurrently completing
// evaluations.
type Sink interface {
	Publish(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// Publish calls f(event).
func (f SinkFunc) Publish(event Event) { f(event) }

// Discard is a Sink that drops all events.
var Discard Sink = SinkFunc(func(Event) {})
