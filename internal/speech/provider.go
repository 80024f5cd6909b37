package speech

import "context"

// Provider is a voice backend that turns text into encoded audio. A
// provider may know the authoritative utterance duration; when it does not
// it reports zero and the engine estimates one from the audio size.
type Provider interface {
	Synthesize(ctx context.Context, text string) (*RawSpeech, error)
	Name() string
}

// RawSpeech is the provider's output before timing estimation.
type RawSpeech struct {
	Audio    []byte
	Duration float64 // seconds; 0 when the provider does not report one
}

// ProviderError is a failure talking to the voice backend.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAPIKey      = "invalid_api_key"
	ErrCodeServiceDown = "service_unavailable"
	ErrCodeNoAudio     = "no_audio"
)
