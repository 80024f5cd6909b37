package models

// QuestionResponse is the payload delivered for every question. In video
// mode the client receives a generation_id and polls for the clip; word
// timings are only included for audio-only rendering.
type QuestionResponse struct {
	Type         string `json:"type"` // always "question"
	SessionID    string `json:"session_id,omitempty"`
	GenerationID string `json:"generation_id,omitempty"`
	VideoStatus  string `json:"video_status"` // "generating" or "disabled"

	QuestionID   int          `json:"question_id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`

	AvatarMode     AvatarMode `json:"avatar_mode"`
	VideoURL       *string    `json:"video_url"`
	IdleVideoURL   *string    `json:"idle_video_url"`
	AvatarImageURL *string    `json:"avatar_image_url"`

	AudioBase64   string       `json:"audio_base64"`
	AudioDuration float64      `json:"audio_duration"`
	WordTimings   []WordTiming `json:"word_timings,omitempty"`

	CurrentQuestion int `json:"current_question"`
	TotalQuestions  int `json:"total_questions"` // 0 when unknown
}

// CompletionResponse is sent when the question source reports exhaustion.
type CompletionResponse struct {
	Type              string          `json:"type"` // always "complete"
	Message           string          `json:"message"`
	QuestionsAnswered int             `json:"questions_answered"`
	SessionSummary    *SessionSummary `json:"session_summary"`
}

// InterviewTurn is the tagged result of one interview operation: exactly
// one of Question or Complete is set.
type InterviewTurn struct {
	Question *QuestionResponse
	Complete *CompletionResponse
}

// VideoStatusResponse is returned when polling a generation token.
type VideoStatusResponse struct {
	GenerationID              string         `json:"generation_id"`
	Status                    VideoJobStatus `json:"status"`
	ElapsedSeconds            float64        `json:"elapsed_seconds"`
	VideoURL                  *string        `json:"video_url"`
	Error                     *string        `json:"error"`
	EstimatedRemainingSeconds *float64       `json:"estimated_remaining_seconds,omitempty"`
}

// SessionStatusResponse reports session state and progress.
type SessionStatusResponse struct {
	SessionID       string       `json:"session_id"`
	State           SessionState `json:"state"`
	CurrentQuestion int          `json:"current_question"`
	TotalQuestions  int          `json:"total_questions"`
	AnswersRecorded int          `json:"answers_recorded"`
	IsComplete      bool         `json:"is_complete"`
}

// EndInterviewResponse wraps the final summary and any upstream feedback.
type EndInterviewResponse struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Summary   *SessionSummary `json:"summary"`
	Feedback  interface{}     `json:"feedback,omitempty"`
}

// InterviewInfoResponse describes the interview format to clients.
type InterviewInfoResponse struct {
	TotalQuestions           int            `json:"total_questions"`
	QuestionTypes            []QuestionType `json:"question_types"`
	EstimatedDurationMinutes int            `json:"estimated_duration_minutes"`
	AvatarMode               AvatarMode     `json:"avatar_mode"`
	AvatarImageURL           string         `json:"avatar_image_url"`
	PresenterID              string         `json:"presenter_id"`
}

// AvatarStatusResponse reports video-provider availability.
type AvatarStatusResponse struct {
	Configured bool        `json:"configured"`
	Mode       AvatarMode  `json:"mode"`
	Message    string      `json:"message,omitempty"`
	Credits    interface{} `json:"credits,omitempty"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface so validation methods can return
// an ErrorResponse directly.
func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}
