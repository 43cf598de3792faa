package transcription

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gajesh2007/ai-debate-judge/errors"
	"github.com/Gajesh2007/ai-debate-judge/logger"
	"github.com/Gajesh2007/ai-debate-judge/resilience"
)

// unknownSpeaker labels diarized segments the provider left unattributed.
const unknownSpeaker = "unknown"

// ServiceConfig configures the transcription service.
type ServiceConfig struct {
	// Concurrency caps in-flight chunk calls (default 4).
	Concurrency int
	// MaxRetries is the per-chunk retry budget (default 3).
	MaxRetries int
	// BaseDelay is the per-chunk retry base delay (default 1s).
	BaseDelay time.Duration
}

// ApplyDefaults fills zero-valued fields with the service defaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
}

// Service drives chunking and parallel transcription against a
// ChunkTranscriber.
type Service struct {
	cfg      ServiceConfig
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
}

// NewService creates a transcription service.
func NewService(cfg ServiceConfig, log *logger.Logger) *Service {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{
		cfg:      cfg,
		bulkhead: resilience.NewBulkhead("transcription-chunks", cfg.Concurrency),
		log:      log.WithComponent("transcription"),
	}
}

// indexedChunk pairs a chunk result with its original position so the
// merge is independent of completion order.
type indexedChunk struct {
	index  int
	result *ChunkResult
}

// Transcribe concatenates buffers into one stream, splits it against
// the provider's chunk threshold, transcribes chunks in sequential
// batches, and merges the re-ordered results.
func (s *Service) Transcribe(ctx context.Context, buffers [][]byte, t ChunkTranscriber) (*Result, error) {
	if t == nil {
		return nil, errors.Internal("transcription: no chunk transcriber configured")
	}

	stream := concat(buffers)
	if len(stream) == 0 {
		return nil, errors.InvalidInput("audio stream is empty")
	}

	chunks := SplitIntoChunks(stream, t.ChunkSizeLimit())
	s.log.Info("transcription started", logger.Fields(
		logger.FieldProvider, t.Name(),
		"stream_bytes", len(stream),
		"chunks", len(chunks),
	))

	results := make([]indexedChunk, len(chunks))

	// Sequential batches; all chunk calls within a batch run
	// concurrently under the bulkhead bound. The batch never
	// short-circuits: every launched call is awaited even after a
	// sibling has failed.
	for start := 0; start < len(chunks); start += s.cfg.Concurrency {
		end := start + s.cfg.Concurrency
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var batchErr error

		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				res, err := s.transcribeChunk(ctx, chunks[idx], idx, t)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if batchErr == nil {
						batchErr = err
					}
					return
				}
				results[idx] = indexedChunk{index: idx, result: res}
			}(i)
		}
		wg.Wait()

		if batchErr != nil {
			return nil, batchErr
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	return s.merge(results, len(chunks), t.Name()), nil
}

// transcribeChunk runs one retried chunk call inside the bulkhead.
func (s *Service) transcribeChunk(ctx context.Context, chunk []byte, idx int, t ChunkTranscriber) (*ChunkResult, error) {
	retryCfg := resilience.RetryConfig{
		MaxRetries: s.cfg.MaxRetries,
		BaseDelay:  s.cfg.BaseDelay,
		Backoff:    resilience.BackoffExponential,
		OnRetry: func(attempt int, err error) {
			s.log.Warn("chunk transcription retry", logger.Fields(
				logger.FieldChunk, idx,
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
		},
	}

	res, err := resilience.ExecuteWithResult(s.bulkhead, ctx, func() (*ChunkResult, error) {
		return resilience.Retry(ctx, retryCfg, func() (*ChunkResult, error) {
			return t.TranscribeChunk(ctx, chunk)
		})
	})
	if err != nil {
		return nil, errors.ChunkTranscription(idx, err)
	}
	return res, nil
}

// merge renders the ordered chunk results. Diarized rendering applies
// when at least one segment anywhere carries a speaker label.
func (s *Service) merge(results []indexedChunk, chunkCount int, providerName string) *Result {
	var totalDuration float64
	labeled := false
	for _, r := range results {
		totalDuration += r.result.DurationSeconds
		for _, seg := range r.result.Segments {
			if seg.Speaker != "" {
				labeled = true
			}
		}
	}

	var text string
	if labeled {
		var lines []string
		for _, r := range results {
			for _, seg := range r.result.Segments {
				speaker := seg.Speaker
				if speaker == "" {
					speaker = unknownSpeaker
				}
				lines = append(lines, fmt.Sprintf("[%s]: %s", speaker, strings.TrimSpace(seg.Text)))
			}
		}
		text = strings.Join(lines, "\n")
	} else {
		parts := make([]string, 0, len(results))
		for _, r := range results {
			if trimmed := strings.TrimSpace(r.result.Text); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		text = strings.Join(parts, " ")
	}

	return &Result{
		Text:                 text,
		TotalDurationSeconds: totalDuration,
		ChunkCount:           chunkCount,
		Provider:             providerName,
		SpeakerLabelsUsed:    labeled,
	}
}

// concat joins the input buffers into one logical stream.
func concat(buffers [][]byte) []byte {
	total := 0
	for _, b := range buffers {
		total += len(b)
	}
	stream := make([]byte, 0, total)
	for _, b := range buffers {
		stream = append(stream, b...)
	}
	return stream
}
