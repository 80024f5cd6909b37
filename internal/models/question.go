package models

import "time"

// QuestionType classifies an interview question. The upstream question
// source does not label questions, so the type is inferred from the text.
type QuestionType string

const (
	QuestionIntroduction QuestionType = "introduction"
	QuestionBehavioral   QuestionType = "behavioral"
	QuestionSituational  QuestionType = "situational"
	QuestionTechnical    QuestionType = "technical"
	QuestionClosing      QuestionType = "closing"
	QuestionGeneral      QuestionType = "general"
)

// Question is a single interview question delivered by a question provider.
// Read-only input from the orchestrator's point of view.
type Question struct {
	ID    int          `json:"question_id"`
	Text  string       `json:"question_text"`
	Type  QuestionType `json:"question_type"`
	Index int          `json:"index"` // 1-based position within the interview
}

// AvatarMode selects how a question is rendered on the client.
type AvatarMode string

const (
	AvatarVideo     AvatarMode = "video"
	AvatarAudioOnly AvatarMode = "audio_only"
)

// WordTiming is the estimated start/end window of one spoken word,
// used for lip-sync and word-highlight animation.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// SpeechResult is synthesized speech plus its timing breakdown. The last
// timing's End equals Duration after normalization.
type SpeechResult struct {
	AudioBase64 string       `json:"audio_base64"`
	AudioBytes  []byte       `json:"-"`
	Duration    float64      `json:"duration"` // seconds
	WordTimings []WordTiming `json:"word_timings"`
}

// VideoJobStatus is the lifecycle status of a background video job.
type VideoJobStatus string

const (
	VideoPending    VideoJobStatus = "pending"
	VideoProcessing VideoJobStatus = "processing"
	VideoCompleted  VideoJobStatus = "completed"
	VideoFailed     VideoJobStatus = "failed"
)

// VideoJob is one background avatar-video generation, keyed by its
// generation token. Owned by the tracker; polled by clients.
type VideoJob struct {
	GenerationID string         `json:"generation_id"`
	SessionID    string         `json:"session_id"`
	QuestionID   int            `json:"question_id"`
	Status       VideoJobStatus `json:"status"`
	VideoURL     string         `json:"video_url,omitempty"`
	Error        string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}
