// Package transcription turns raw audio buffers into transcript text.
//
// Input buffers are concatenated into one logical stream, split against
// the provider's chunk threshold, and transcribed in sequential batches
// of bounded concurrency. Each chunk call is retried independently; a
// chunk that exhausts its retries fails the entire transcription, since
// a hole in the middle of a transcript is worse than a total failure.
//
// Results are tagged with their original chunk index and re-sorted
// before merging, so output order is independent of completion order.
// When the provider supplies diarization (per-segment speaker labels),
// the merged output renders one "[speaker]: text" line per segment.
package transcription
