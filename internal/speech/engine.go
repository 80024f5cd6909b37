package speech

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"peerprep/avatar/internal/models"
)

// fallbackBytesPerSecond approximates the bitrate of a typical compressed
// mono voice stream (~128 kbps mp3). Used to estimate utterance duration
// when the provider does not report one.
const fallbackBytesPerSecond = 16000

// Engine synthesizes speech and derives per-word timings for lip-sync.
type Engine struct {
	provider Provider
	logger   *zap.Logger
}

func NewEngine(provider Provider, logger *zap.Logger) *Engine {
	return &Engine{
		provider: provider,
		logger:   logger,
	}
}

// Synthesize produces audio plus word timings for the given text. Empty or
// whitespace-only text yields an empty result without touching the
// provider. The last timing's End always equals the reported Duration.
func (e *Engine) Synthesize(ctx context.Context, text string) (*models.SpeechResult, error) {
	if strings.TrimSpace(text) == "" {
		return &models.SpeechResult{WordTimings: []models.WordTiming{}}, nil
	}

	raw, err := e.provider.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(raw.Audio) == 0 {
		return nil, &ProviderError{
			Provider: e.provider.Name(),
			Code:     ErrCodeNoAudio,
			Message:  "Provider returned no audio",
		}
	}

	// Prefer the provider's duration; otherwise estimate from audio size.
	duration := raw.Duration
	if duration <= 0 {
		duration = float64(len(raw.Audio)) / fallbackBytesPerSecond
	}
	duration = round3(duration)

	timings := EstimateWordTimings(text, duration)

	e.logger.Debug("speech synthesized",
		zap.String("provider", e.provider.Name()),
		zap.Int("audio_bytes", len(raw.Audio)),
		zap.Float64("duration", duration),
		zap.Int("words", len(timings)))

	return &models.SpeechResult{
		AudioBase64: base64.StdEncoding.EncodeToString(raw.Audio),
		AudioBytes:  raw.Audio,
		Duration:    duration,
		WordTimings: timings,
	}, nil
}
