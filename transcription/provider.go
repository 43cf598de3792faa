package transcription

import (
	"context"

	"github.com/Gajesh2007/ai-debate-judge/provider"
)

// ChunkTranscriber is the injected capability that transcribes a single
// audio chunk. Implementations live outside the core.
type ChunkTranscriber interface {
	provider.Provider // embeds Name() and IsAvailable()

	// ChunkSizeLimit returns the provider's maximum chunk size in
	// bytes. Streams larger than this are split before submission.
	ChunkSizeLimit() int

	// TranscribeChunk sends one audio chunk for transcription.
	TranscribeChunk(ctx context.Context, chunk []byte) (*ChunkResult, error)
}
