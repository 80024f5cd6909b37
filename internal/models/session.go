package models

import "time"

// SessionState is the lifecycle state of an interview session.
type SessionState string

const (
	StateCreated          SessionState = "created"
	StateInProgress       SessionState = "in_progress"
	StateWaitingForAnswer SessionState = "waiting_for_answer"
	StateProcessing       SessionState = "processing"
	StateCompleted        SessionState = "completed"
	StateExpired          SessionState = "expired"
)

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateExpired
}

// AnswerRecord is one recorded answer. Immutable once appended; the
// per-session list is chronological.
type AnswerRecord struct {
	QuestionID int       `json:"question_id"`
	AnswerText string    `json:"answer_text"`
	Timestamp  time.Time `json:"timestamp"`
}

// InterviewSession is the in-memory state of one interview conversation.
// Owned by the session registry; mutate only through registry operations.
type InterviewSession struct {
	SessionID       string         `json:"session_id"`
	State           SessionState   `json:"state"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CurrentQuestion *Question      `json:"current_question,omitempty"`
	QuestionsAsked  int            `json:"questions_asked"`
	Answers         []AnswerRecord `json:"answers"`
}

// SessionSummary is the compact view returned by summary/end operations.
type SessionSummary struct {
	SessionID         string       `json:"session_id"`
	State             SessionState `json:"state"`
	QuestionsAnswered int          `json:"questions_answered"`
	CreatedAt         time.Time    `json:"created_at"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
}
