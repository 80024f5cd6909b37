package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/question"
)

// Client integrates with the platform's question-generation API.
//
// Upstream contract:
//   - POST /api/generic/start_interview_session -> {success, session_id}
//   - GET  /api/theai/gen_ques/{id}             -> {success, question_id, question, questions_asked, is_first_question}
//   - POST /api/theai/send_ans/                 -> {success}
//   - POST /api/generic/end_interview_session   -> feedback payload
//
// The upstream allocates its own numeric session ids, so the client keeps
// a mapping from this service's session ids to upstream ones.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu       sync.RWMutex
	upstream map[string]int64 // our session id -> upstream session id
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  baseURL,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		upstream: make(map[string]int64),
	}
}

type startSessionRequest struct {
	UserID         string `json:"user_id"`
	StartTime      string `json:"start_time"`
	ResumeBlob     string `json:"resume_blob"`
	Role           string `json:"role"`
	Company        string `json:"company"`
	Experience     int    `json:"experience"`
	JobDescription string `json:"job_description"`
}

type startSessionResponse struct {
	Success   bool   `json:"success"`
	SessionID int64  `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (c *Client) StartSession(ctx context.Context, sessionID string, startCtx question.StartContext) error {
	startTime := startCtx.StartTime
	if startTime == "" {
		startTime = time.Now().UTC().Format("2006-01-02T15:04:05")
	}

	var resp startSessionResponse
	err := c.postJSON(ctx, "/api/generic/start_interview_session", startSessionRequest{
		UserID:         startCtx.UserID,
		StartTime:      startTime,
		ResumeBlob:     startCtx.ResumeText,
		Role:           startCtx.Role,
		Company:        startCtx.Company,
		Experience:     startCtx.Experience,
		JobDescription: startCtx.JobDescription,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &question.ProviderError{
			Provider: "remote",
			Code:     question.ErrCodeInvalidInput,
			Message:  "Upstream refused to start session: " + resp.Message,
		}
	}

	c.mu.Lock()
	c.upstream[sessionID] = resp.SessionID
	c.mu.Unlock()
	return nil
}

type nextQuestionResponse struct {
	Success         bool   `json:"success"`
	QuestionID      int    `json:"question_id"`
	Question        string `json:"question"`
	QuestionsAsked  int    `json:"questions_asked"`
	IsFirstQuestion bool   `json:"is_first_question"`
}

// NextQuestion fetches the next question. The previous answer has already
// been delivered via SubmitAnswer; the upstream uses its stored history,
// so previousAnswer is unused here. A 404 or an unsuccessful body is the
// upstream's way of signaling exhaustion.
func (c *Client) NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error) {
	upstreamID, ok := c.upstreamID(sessionID)
	if !ok {
		return nil, &question.ProviderError{
			Provider: "remote",
			Code:     question.ErrCodeUnknownID,
			Message:  fmt.Sprintf("No upstream session for %s; call StartSession first", sessionID),
		}
	}

	url := fmt.Sprintf("%s/api/theai/gen_ques/%d", c.baseURL, upstreamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, wireErr(err)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, wireErr(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// interview is complete upstream
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, statusErr(res)
	}

	var body nextQuestionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, wireErr(err)
	}
	if !body.Success {
		return nil, nil
	}

	return &models.Question{
		ID:    body.QuestionID,
		Text:  body.Question,
		Type:  question.InferQuestionType(body.Question, body.IsFirstQuestion),
		Index: body.QuestionsAsked,
	}, nil
}

type submitAnswerRequest struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

type submitAnswerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error {
	var resp submitAnswerResponse
	err := c.postJSON(ctx, "/api/theai/send_ans/", submitAnswerRequest{
		QuestionID: questionID,
		Answer:     answerText,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &question.ProviderError{
			Provider: "remote",
			Code:     question.ErrCodeInvalidInput,
			Message:  "Upstream rejected answer: " + resp.Message,
		}
	}
	return nil
}

type endSessionRequest struct {
	InterviewSessionID int64  `json:"interview_session_id"`
	EndTime            string `json:"end_time"`
}

// EndSession closes the upstream session and returns its feedback payload
// verbatim. A missing mapping is not an error: the interview can be ended
// locally even if the upstream session was never established.
func (c *Client) EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error) {
	upstreamID, ok := c.upstreamID(sessionID)
	if !ok {
		return nil, nil
	}
	if endTime == "" {
		endTime = time.Now().UTC().Format("2006-01-02T15:04:05")
	}

	var feedback map[string]interface{}
	err := c.postJSON(ctx, "/api/generic/end_interview_session", endSessionRequest{
		InterviewSessionID: upstreamID,
		EndTime:            endTime,
	}, &feedback)

	c.mu.Lock()
	delete(c.upstream, sessionID)
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func (c *Client) TotalQuestions() int {
	return 0 // upstream does not advertise a total
}

func (c *Client) Name() string {
	return "remote"
}

func (c *Client) upstreamID(sessionID string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.upstream[sessionID]
	return id, ok
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return wireErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return wireErr(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return wireErr(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return statusErr(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func wireErr(err error) error {
	return &question.ProviderError{
		Provider: "remote",
		Code:     question.ErrCodeServiceDown,
		Message:  "Question service unreachable",
		Err:      err,
	}
}

func statusErr(res *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &question.ProviderError{
		Provider: "remote",
		Code:     question.ErrCodeServiceDown,
		Message:  fmt.Sprintf("Question service returned %d: %s", res.StatusCode, snippet),
	}
}
