package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/cache"
	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/handlers"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/orchestrator"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/session"
	"peerprep/avatar/internal/speech"
)

type noQuestions struct{}

func (noQuestions) StartSession(ctx context.Context, sessionID string, startCtx question.StartContext) error {
	return nil
}
func (noQuestions) NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error) {
	return nil, nil
}
func (noQuestions) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error {
	return nil
}
func (noQuestions) EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error) {
	return nil, nil
}
func (noQuestions) TotalQuestions() int { return 0 }
func (noQuestions) Name() string        { return "none" }

type silentVoice struct{}

func (silentVoice) Synthesize(ctx context.Context, text string) (*speech.RawSpeech, error) {
	return &speech.RawSpeech{Audio: []byte{0x01}}, nil
}
func (silentVoice) Name() string { return "silent" }

type noVideo struct{}

func (noVideo) GenerateVideo(ctx context.Context, text string) (string, error) { return "", nil }

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	cfg := &config.Config{
		QuestionProvider:  "remote",
		PresenterID:       config.DefaultPresenterID,
		PresenterIdleURL:  config.DefaultPresenterIdleVideo,
		PresenterImageURL: config.DefaultPresenterImage,
		GenerationTimeout: time.Second,
		PollInterval:      time.Millisecond,
	}
	logger := zap.NewNop()
	client := avatar.NewClient(cfg, cache.NewMemoryStore(), logger)
	tracker := avatar.NewTracker(noVideo{}, time.Second, logger)
	engine := speech.NewEngine(silentVoice{}, logger)
	orch := orchestrator.New(session.NewRegistry(), noQuestions{}, engine, client, tracker, logger)

	router := chi.NewRouter()
	HealthRoutes(router, handlers.NewHealthHandler(noQuestions{}, engine, cfg))
	InterviewRoutes(router,
		handlers.NewInterviewHandler(orch, logger),
		handlers.NewVideoHandler(tracker, logger),
		handlers.NewAvatarHandler(client, logger),
		handlers.NewWSHandler(orch, logger))
	return router
}

func TestRegisteredRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/v1/interview/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/interview/info", http.StatusOK},
		{http.MethodGet, "/api/v1/interview/avatar/status", http.StatusOK},
		{http.MethodGet, "/api/v1/interview/video/status/gen_missing", http.StatusNotFound},
		{http.MethodGet, "/api/v1/interview/some-session/question", http.StatusNotFound},
		{http.MethodGet, "/api/v1/interview/some-session/status", http.StatusNotFound},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/interview/info", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestStartRouteCreatesSession(t *testing.T) {
	router := newTestRouter(t)

	// the no-op source exhausts immediately, so starting yields completion
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interview/start", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"complete"`)
}
