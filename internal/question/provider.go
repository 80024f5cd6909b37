package question

import (
	"context"

	"peerprep/avatar/internal/models"
)

// StartContext is the optional candidate context handed to the question
// source when an interview starts.
type StartContext struct {
	UserID         string
	StartTime      string // ISO 8601
	ResumeText     string
	Role           string
	Company        string
	Experience     int
	JobDescription string
}

// Provider is a question source for interview sessions.
//
// NextQuestion returning (nil, nil) is the authoritative completion
// signal: the orchestrator never infers exhaustion from anything else,
// because a source's total question count may be unknown.
type Provider interface {
	StartSession(ctx context.Context, sessionID string, startCtx StartContext) error
	NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error
	EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error)
	// TotalQuestions is the advertised interview length, 0 when unknown.
	TotalQuestions() int
	Name() string
}

// ProviderError is an error from a question source.
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
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeUnknownID    = "unknown_session"
)
