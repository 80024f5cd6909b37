package gemini

import (
	"errors"
	"os"
	"strconv"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey       string
	Model        string
	MaxQuestions int
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash" // default model
	}

	maxQuestions := 8 // default interview length
	if raw := os.Getenv("GEMINI_MAX_QUESTIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, errors.New("GEMINI_MAX_QUESTIONS must be a positive integer")
		}
		maxQuestions = n
	}

	return &Config{
		APIKey:       apiKey,
		Model:        model,
		MaxQuestions: maxQuestions,
	}, nil
}
