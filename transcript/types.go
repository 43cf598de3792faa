// Package transcript defines the normalized debate transcript and the
// formatter that produces it from raw text via a structured LLM call.
package transcript

import (
	"fmt"
)

// Speaker is a declared debate participant.
type Speaker struct {
	// ID is the speaker's unique identifier, referenced by segments.
	ID string `json:"id" validate:"required"`
	// Position is the speaker's stance (e.g. "Pro-remote").
	Position string `json:"position"`
	// SpeakingOrder is the speaker's 1-based order of first appearance.
	SpeakingOrder int `json:"speakingOrder"`
}

// Segment is one ordered utterance in the debate.
type Segment struct {
	// SpeakerID references a declared speaker.
	SpeakerID string `json:"speakerId" validate:"required"`
	// Text is the utterance text.
	Text string `json:"text" validate:"required"`
	// Timestamp is an optional position marker (e.g. "00:04:31").
	Timestamp string `json:"timestamp,omitempty"`
}

// Transcript is the normalized form every downstream stage consumes.
type Transcript struct {
	Topic    string    `json:"topic" validate:"required"`
	Speakers []Speaker `json:"speakers" validate:"required,min=1,dive"`
	Segments []Segment `json:"segments" validate:"required,min=1,dive"`
	Summary  string    `json:"summary"`
}

// Validate checks the transcript's referential invariant: every
// segment's speaker id must reference a declared speaker, and speaker
// ids must be unique.
func (t *Transcript) Validate() error {
	declared := make(map[string]bool, len(t.Speakers))
	for _, s := range t.Speakers {
		if s.ID == "" {
			return fmt.Errorf("transcript: speaker with empty id")
		}
		if declared[s.ID] {
			return fmt.Errorf("transcript: duplicate speaker id %q", s.ID)
		}
		declared[s.ID] = true
	}
	for i, seg := range t.Segments {
		if !declared[seg.SpeakerID] {
			return fmt.Errorf("transcript: segment %d references undeclared speaker %q", i, seg.SpeakerID)
		}
	}
	return nil
}

// SpeakerIDs returns the declared speaker ids in declaration order.
func (t *Transcript) SpeakerIDs() []string {
	ids := make([]string, len(t.Speakers))
	for i, s := range t.Speakers {
		ids[i] = s.ID
	}
	return ids
}

// Text renders the transcript as "[speaker]: text" lines, the form the
// judges are prompted with.
func (t *Transcript) Text() string {
	out := ""
	for i, seg := range t.Segments {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("[%s]: %s", seg.SpeakerID, seg.Text)
	}
	return out
}
