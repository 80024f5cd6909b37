package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Default presenter assets served by the video provider. The idle clip and
// still image exist for every hosted presenter, so no generation is needed
// for the waiting state or the audio-only fallback.
const (
	DefaultPresenterID        = "v2_public_Amber@0zSz8kflCN"
	DefaultPresenterIdleVideo = "https://clips-presenters.d-id.com/v2/Amber/0zSz8kflCN/OUM7xZOuD5/idle.mp4"
	DefaultPresenterImage     = "https://clips-presenters.d-id.com/v2/Amber/0zSz8kflCN/OUM7xZOuD5/image.png"
)

// app config: question source, speech synthesis, avatar video, cleanup
type Config struct {
	Port string

	QuestionProvider   string // "remote" or "gemini"
	QuestionServiceURL string

	OpenAIAPIKey string
	TTSModel     string
	TTSVoice     string

	DIDAPIKey         string
	DIDAPIURL         string
	DIDTTSVoice       string
	PresenterID       string
	PresenterIdleURL  string
	PresenterImageURL string
	GenerationTimeout time.Duration
	PollInterval      time.Duration

	RedisAddr string

	SessionTimeout    time.Duration
	VideoJobRetention time.Duration
	CleanupSchedule   string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnvOrDefault("PORT", "8080"),

		QuestionProvider:   getEnvOrDefault("QUESTION_PROVIDER", "remote"),
		QuestionServiceURL: os.Getenv("QUESTION_SERVICE_URL"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		TTSModel:     getEnvOrDefault("TTS_MODEL", "tts-1"),
		TTSVoice:     getEnvOrDefault("TTS_VOICE", "nova"),

		DIDAPIKey:         os.Getenv("DID_API_KEY"),
		DIDAPIURL:         getEnvOrDefault("DID_API_URL", "https://api.d-id.com"),
		DIDTTSVoice:       getEnvOrDefault("DID_TTS_VOICE", "en-US-JennyNeural"),
		PresenterID:       getEnvOrDefault("DID_PRESENTER_ID", DefaultPresenterID),
		PresenterIdleURL:  getEnvOrDefault("PRESENTER_IDLE_VIDEO_URL", DefaultPresenterIdleVideo),
		PresenterImageURL: getEnvOrDefault("AVATAR_IMAGE_URL", DefaultPresenterImage),
		GenerationTimeout: getEnvAsDuration("AVATAR_GENERATION_TIMEOUT", 120*time.Second),
		PollInterval:      getEnvAsDuration("AVATAR_POLL_INTERVAL", 2*time.Second),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		SessionTimeout:    getEnvAsDuration("SESSION_TIMEOUT", 30*time.Minute),
		VideoJobRetention: getEnvAsDuration("VIDEO_JOB_RETENTION", time.Hour),
		CleanupSchedule:   getEnvOrDefault("CLEANUP_SCHEDULE", "@every 5m"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	switch config.QuestionProvider {
	case "remote":
		if config.QuestionServiceURL == "" {
			return errors.New("QUESTION_SERVICE_URL is required when QUESTION_PROVIDER is remote")
		}
	case "gemini":
		// Gemini validation is handled by gemini.NewConfig()
	default:
		return errors.New("unsupported question provider: " + config.QuestionProvider + ". Currently supported: remote, gemini")
	}
	if config.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY environment variable is required")
	}
	if config.PollInterval <= 0 || config.GenerationTimeout <= 0 {
		return errors.New("avatar poll interval and generation timeout must be positive")
	}
	return nil
}

// AvatarConfigured reports whether the video provider can be used.
// Without a key the service runs in audio-only mode.
func (c *Config) AvatarConfigured() bool {
	return c.DIDAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
