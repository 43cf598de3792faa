package council

// Judge identifies one judge model on the council.
type Judge struct {
	// Name is the judge's display name.
	Name string `json:"name"`
	// Model is the provider model ID used for the evaluation call.
	Model string `json:"model"`
	// Temperature overrides the provider default when non-zero.
	Temperature float64 `json:"temperature,omitempty"`
}

// SpeakerScore holds one judge's (or the aggregated) per-dimension
// scores for a speaker. The four dimensions are conventionally 0-10;
// Total is supplied by the judge, not derived.
type SpeakerScore struct {
	SpeakerID     string  `json:"speakerId"`
	Argumentation float64 `json:"argumentation"`
	Evidence      float64 `json:"evidence"`
	Delivery      float64 `json:"delivery"`
	Rebuttal      float64 `json:"rebuttal"`
	Total         float64 `json:"total"`
}

// KeyMoment is a notable turning point a judge identified.
type KeyMoment struct {
	Speaker     string `json:"speaker"`
	Description string `json:"description"`
	// Impact is "positive" or "negative".
	Impact string `json:"impact" validate:"omitempty,oneof=positive negative"`
}

// JudgeEvaluation is one judge's structured verdict. The validate tags
// implement the structural-validity check: a result failing them is a
// retryable failure, not a silent pass-through.
type JudgeEvaluation struct {
	Winner     string                  `json:"winner" validate:"required"`
	Confidence float64                 `json:"confidence" validate:"gte=0,lte=100"`
	Scores     map[string]SpeakerScore `json:"scores" validate:"required,min=1"`
	Reasoning  string                  `json:"reasoning" validate:"required"`
	KeyMoments []KeyMoment             `json:"keyMoments,omitempty" validate:"omitempty,dive"`
}

// IndividualJudgment pairs a judge with its evaluation. Created once
// per successful judge call, immutable thereafter.
type IndividualJudgment struct {
	JudgeName  string          `json:"judgeName"`
	Evaluation JudgeEvaluation `json:"evaluation"`
}

// CouncilVerdict is the aggregated outcome of one council run.
//
// Invariants: the vote counts sum to len(IndividualJudgments), and
// FinalWinner is a key of VoteCount.
type CouncilVerdict struct {
	FinalWinner         string                  `json:"finalWinner"`
	Unanimity           bool                    `json:"unanimity"`
	VoteCount           map[string]int          `json:"voteCount"`
	AverageScores       map[string]SpeakerScore `json:"averageScores"`
	IndividualJudgments []IndividualJudgment    `json:"individualJudgments"`
	ConsensusSummary    string                  `json:"consensusSummary"`
}
