package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/cache"
	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/orchestrator"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/session"
	"peerprep/avatar/internal/speech"
)

// ============================================================================
// Test Helpers
// ============================================================================

type fakeQuestions struct {
	texts     []string
	served    int
	total     int
	nextErr   error
	submitErr error
	feedback  interface{}
}

func (f *fakeQuestions) StartSession(ctx context.Context, sessionID string, startCtx question.StartContext) error {
	return nil
}

func (f *fakeQuestions) NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	if f.served >= len(f.texts) {
		return nil, nil
	}
	q := &models.Question{
		ID:   f.served + 1,
		Text: f.texts[f.served],
		Type: models.QuestionGeneral,
	}
	f.served++
	return q, nil
}

func (f *fakeQuestions) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error {
	return f.submitErr
}

func (f *fakeQuestions) EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error) {
	return f.feedback, nil
}

func (f *fakeQuestions) TotalQuestions() int { return f.total }
func (f *fakeQuestions) Name() string        { return "fake" }

type fakeVoice struct{}

func (fakeVoice) Synthesize(ctx context.Context, text string) (*speech.RawSpeech, error) {
	return &speech.RawSpeech{Audio: make([]byte, 16000)}, nil
}

func (fakeVoice) Name() string { return "fake" }

type fakeVideo struct{}

func (fakeVideo) GenerateVideo(ctx context.Context, text string) (string, error) {
	return "https://example.com/clip.mp4", nil
}

type testEnv struct {
	orch      *orchestrator.Orchestrator
	tracker   *avatar.Tracker
	client    *avatar.Client
	questions *fakeQuestions
}

func newTestEnv(t *testing.T, questions *fakeQuestions, didKey string) *testEnv {
	t.Helper()
	cfg := &config.Config{
		DIDAPIKey:         didKey,
		PresenterID:       config.DefaultPresenterID,
		PresenterIdleURL:  config.DefaultPresenterIdleVideo,
		PresenterImageURL: config.DefaultPresenterImage,
		GenerationTimeout: time.Second,
		PollInterval:      time.Millisecond,
	}
	store := cache.NewMemoryStore()
	store.Set(context.Background(), "avatar:idle_video_url", config.DefaultPresenterIdleVideo, 0)

	logger := zap.NewNop()
	client := avatar.NewClient(cfg, store, logger)
	tracker := avatar.NewTracker(fakeVideo{}, time.Second, logger)
	engine := speech.NewEngine(fakeVoice{}, logger)
	orch := orchestrator.New(session.NewRegistry(), questions, engine, client, tracker, logger)

	return &testEnv{orch: orch, tracker: tracker, client: client, questions: questions}
}

// withURLParam injects a chi route parameter without running a full mux.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func record(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
