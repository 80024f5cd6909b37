package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/genai"

	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/prompts"
	"peerprep/avatar/internal/question"
)

// Client generates interview questions locally with the Gemini API.
//
// Unlike the remote provider it has no upstream session store, so it
// keeps per-session history itself and enforces a fixed question budget.
type Client struct {
	config  *Config
	prompts prompts.PromptProvider

	// generate is the model call, replaceable in tests
	generate func(ctx context.Context, prompt string) (string, error)

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	startCtx question.StartContext
	history  []turn
	asked    int
	nextID   int
}

type turn struct {
	question string
	answer   string
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	pm, err := prompts.NewPromptManager()
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:   config,
		prompts:  pm,
		sessions: make(map[string]*sessionState),
	}
	c.generate = func(ctx context.Context, prompt string) (string, error) {
		result, err := genaiClient.Models.GenerateContent(ctx, config.Model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		if result == nil {
			return "", nil
		}
		return result.Text()
	}
	return c, nil
}

func (c *Client) StartSession(ctx context.Context, sessionID string, startCtx question.StartContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = &sessionState{
		startCtx: startCtx,
		nextID:   1,
	}
	return nil
}

func (c *Client) NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error) {
	c.mu.Lock()
	state, ok := c.sessions[sessionID]
	if !ok {
		c.mu.Unlock()
		return nil, &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeUnknownID,
			Message:  fmt.Sprintf("No session state for %s; call StartSession first", sessionID),
		}
	}
	if state.asked >= c.config.MaxQuestions {
		c.mu.Unlock()
		// budget exhausted, interview is complete
		return nil, nil
	}
	prompt, err := c.buildPrompt(state, previousAnswer)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeServiceDown,
			Message:  "Failed to generate question",
			Err:      err,
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	isFirst := state.asked == 0
	q := &models.Question{
		ID:    state.nextID,
		Text:  text,
		Type:  question.InferQuestionType(text, isFirst),
		Index: state.asked + 1,
	}
	state.nextID++
	state.asked++
	state.history = append(state.history, turn{question: text})
	return q, nil
}

// SubmitAnswer attaches the answer to the matching question in the
// session history so followup prompts can reference it.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.sessions[sessionID]
	if !ok {
		return &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeUnknownID,
			Message:  fmt.Sprintf("No session state for %s", sessionID),
		}
	}

	// question ids are issued sequentially from 1
	idx := questionID - 1
	if idx < 0 || idx >= len(state.history) {
		return &question.ProviderError{
			Provider: "gemini",
			Code:     question.ErrCodeInvalidInput,
			Message:  fmt.Sprintf("Unknown question id %d", questionID),
		}
	}
	state.history[idx].answer = answerText
	return nil
}

func (c *Client) EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	return nil, nil
}

func (c *Client) TotalQuestions() int {
	return c.config.MaxQuestions
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) buildPrompt(state *sessionState, previousAnswer string) (string, error) {
	data := map[string]string{
		"Role":           state.startCtx.Role,
		"Company":        state.startCtx.Company,
		"Experience":     strconv.Itoa(state.startCtx.Experience),
		"JobDescription": state.startCtx.JobDescription,
	}

	if state.asked == 0 {
		return c.prompts.BuildPrompt("question", "first", data)
	}

	var history strings.Builder
	for _, t := range state.history {
		history.WriteString("Q: " + t.question + "\n")
		if t.answer != "" {
			history.WriteString("A: " + t.answer + "\n")
		}
	}
	data["History"] = history.String()
	data["PreviousAnswer"] = previousAnswer
	return c.prompts.BuildPrompt("question", "followup", data)
}
