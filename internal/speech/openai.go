package speech

import (
	"context"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider synthesizes speech with the OpenAI TTS API. The API
// returns encoded audio only, no duration or word boundaries, so timing is
// always estimated downstream.
type OpenAIProvider struct {
	cli   *openai.Client
	model string
	voice string
}

func NewOpenAIProvider(apiKey, model, voice string) *OpenAIProvider {
	return &OpenAIProvider{
		cli:   openai.NewClient(apiKey),
		model: model,
		voice: voice,
	}
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, text string) (*RawSpeech, error) {
	resp, err := p.cli.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.model),
		Input:          text,
		Voice:          openai.SpeechVoice(p.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, &ProviderError{
			Provider: "openai",
			Code:     ErrCodeServiceDown,
			Message:  "Failed to synthesize speech",
			Err:      err,
		}
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &ProviderError{
			Provider: "openai",
			Code:     ErrCodeServiceDown,
			Message:  "Failed to read audio stream",
			Err:      err,
		}
	}

	return &RawSpeech{Audio: audio}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}
