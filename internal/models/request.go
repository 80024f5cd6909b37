package models

// StartInterviewRequest is the optional context sent when starting an
// interview. All fields default to empty; the question source decides how
// much of the context it uses.
type StartInterviewRequest struct {
	UserID         string `json:"user_id"`
	StartTime      string `json:"start_time"` // ISO 8601, defaults to now
	ResumeText     string `json:"resume_text"`
	Role           string `json:"role"`
	Company        string `json:"company"`
	Experience     int    `json:"experience"`
	JobDescription string `json:"job_description"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	if r.UserID == "" {
		r.UserID = "default_user"
	}
	if r.Experience < 0 {
		return &ErrorResponse{
			Code:    "invalid_experience",
			Message: "Experience must not be negative",
		}
	}
	return nil
}

// SubmitAnswerRequest is the body of an answer submission.
type SubmitAnswerRequest struct {
	QuestionID *int   `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.QuestionID == nil {
		return &ErrorResponse{
			Code:    "missing_question_id",
			Message: "question_id is required",
		}
	}
	return nil
}

// EndInterviewRequest optionally carries the interview end timestamp.
type EndInterviewRequest struct {
	EndTime string `json:"end_time"` // ISO 8601, defaults to now
}

func (r *EndInterviewRequest) Validate() error {
	return nil
}
