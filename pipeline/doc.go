// Package pipeline runs the full debate adjudication flow: optional
// audio transcription, the moderation gate, transcript formatting, the
// judge council, and verdict signing, with best-effort persistence of
// the final record.
//
// Each stage either fully succeeds or fails the run; the only locally
// absorbed failures are per-judge failures inside the council, which
// tolerates them as long as quorum holds.
package pipeline
