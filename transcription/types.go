package transcription

// Segment represents a time-aligned portion of a chunk transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Speaker is the diarized speaker label, if the provider supplies one.
	Speaker string `json:"speaker,omitempty"`
}

// ChunkResult holds the transcription of a single audio chunk.
type ChunkResult struct {
	// Text is the chunk's transcription text.
	Text string `json:"text"`
	// DurationSeconds is the chunk's audio duration, 0 if unknown.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	// Segments contains time-aligned segments, possibly with speakers.
	Segments []Segment `json:"segments,omitempty"`
}

// Result is the merged output of a full transcription run.
type Result struct {
	// Text is the merged transcript.
	Text string `json:"text"`
	// TotalDurationSeconds is the sum of chunk durations, omitted if zero.
	TotalDurationSeconds float64 `json:"totalDurationSeconds,omitempty"`
	// ChunkCount is how many chunks the stream was split into.
	ChunkCount int `json:"chunkCount"`
	// Provider names the transcription backend used.
	Provider string `json:"providerName"`
	// SpeakerLabelsUsed reports whether diarized rendering was applied.
	SpeakerLabelsUsed bool `json:"speakerLabelsUsed"`
}
