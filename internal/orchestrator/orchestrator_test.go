package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/cache"
	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/session"
	"peerprep/avatar/internal/speech"
)

type stubQuestions struct {
	texts     []string
	served    int
	total     int
	submitted []models.AnswerRecord
	nextErr   error
	submitErr error
	feedback  interface{}
}

func (s *stubQuestions) StartSession(ctx context.Context, sessionID string, startCtx question.StartContext) error {
	return nil
}

func (s *stubQuestions) NextQuestion(ctx context.Context, sessionID string, previousAnswer string) (*models.Question, error) {
	if s.nextErr != nil {
		return nil, s.nextErr
	}
	if s.served >= len(s.texts) {
		return nil, nil
	}
	q := &models.Question{
		ID:   s.served + 1,
		Text: s.texts[s.served],
		Type: models.QuestionGeneral,
	}
	s.served++
	return q, nil
}

func (s *stubQuestions) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) error {
	if s.submitErr != nil {
		return s.submitErr
	}
	s.submitted = append(s.submitted, models.AnswerRecord{QuestionID: questionID, AnswerText: answerText})
	return nil
}

func (s *stubQuestions) EndSession(ctx context.Context, sessionID string, endTime string) (interface{}, error) {
	return s.feedback, nil
}

func (s *stubQuestions) TotalQuestions() int { return s.total }
func (s *stubQuestions) Name() string        { return "stub" }

type stubSpeech struct {
	err   error
	calls int
}

func (s *stubSpeech) Synthesize(ctx context.Context, text string) (*speech.RawSpeech, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &speech.RawSpeech{Audio: make([]byte, 16000)}, nil // one second of audio
}

func (s *stubSpeech) Name() string { return "stub" }

type stubVideo struct{}

func (stubVideo) GenerateVideo(ctx context.Context, text string) (string, error) {
	return "https://example.com/clip.mp4", nil
}

func newAudioOnly(t *testing.T, qs *stubQuestions) *Orchestrator {
	t.Helper()
	return newOrchestrator(t, qs, &stubSpeech{}, "")
}

func newOrchestrator(t *testing.T, qs *stubQuestions, voice speech.Provider, didKey string) *Orchestrator {
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
	// idle URL pre-cached so the client never calls out
	store.Set(context.Background(), "avatar:idle_video_url", config.DefaultPresenterIdleVideo, 0)

	logger := zap.NewNop()
	client := avatar.NewClient(cfg, store, logger)
	tracker := avatar.NewTracker(stubVideo{}, time.Second, logger)
	return New(session.NewRegistry(), qs, speech.NewEngine(voice, logger), client, tracker, logger)
}

func TestStartDeliversFirstQuestion(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{texts: []string{"Tell me about yourself."}, total: 5})

	res, err := o.Start(context.Background(), models.StartInterviewRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingForAnswer, res.State)
	assert.Equal(t, models.AvatarAudioOnly, res.AvatarMode)
	assert.Equal(t, 5, res.TotalQuestions)

	q := res.Turn.Question
	require.NotNil(t, q)
	assert.Nil(t, res.Turn.Complete)
	assert.Equal(t, "Tell me about yourself.", q.QuestionText)
	assert.Equal(t, 1, q.CurrentQuestion)
	assert.Equal(t, "disabled", q.VideoStatus)
	assert.NotEmpty(t, q.AudioBase64)
	assert.InDelta(t, 1.0, q.AudioDuration, 0.001)
	assert.NotEmpty(t, q.WordTimings)
	require.NotNil(t, q.AvatarImageURL)
	assert.Equal(t, config.DefaultPresenterImage, *q.AvatarImageURL)
	assert.Nil(t, q.VideoURL)
}

func TestSubmitAnswerAdvances(t *testing.T) {
	qs := &stubQuestions{texts: []string{"First?", "Second?"}}
	o := newAudioOnly(t, qs)

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)
	sessionID := res.SessionID

	turn, err := o.SubmitAnswer(context.Background(), sessionID, 1, "My answer.")
	require.NoError(t, err)
	require.NotNil(t, turn.Question)
	assert.Equal(t, 2, turn.Question.QuestionID)
	assert.Equal(t, 2, turn.Question.CurrentQuestion)

	require.Len(t, qs.submitted, 1)
	assert.Equal(t, "My answer.", qs.submitted[0].AnswerText)

	status, err := o.Status(sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingForAnswer, status.State)
	assert.Equal(t, 1, status.AnswersRecorded)
}

func TestInterviewCompletes(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{texts: []string{"Only question?"}})

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	turn, err := o.SubmitAnswer(context.Background(), res.SessionID, 1, "Done.")
	require.NoError(t, err)
	require.NotNil(t, turn.Complete)
	assert.Nil(t, turn.Question)
	assert.Equal(t, 1, turn.Complete.QuestionsAnswered)
	require.NotNil(t, turn.Complete.SessionSummary)
	assert.Equal(t, models.StateCompleted, turn.Complete.SessionSummary.State)

	// further answers are rejected
	_, err = o.SubmitAnswer(context.Background(), res.SessionID, 1, "More.")
	require.Error(t, err)
	var resp *models.ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, "session_completed", resp.Code)
}

func TestSubmitAnswerRecordsMismatchedQuestionID(t *testing.T) {
	qs := &stubQuestions{texts: []string{"First?", "Second?"}}
	o := newAudioOnly(t, qs)

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	// the submitted id is recorded as-is, not checked against question 1
	turn, err := o.SubmitAnswer(context.Background(), res.SessionID, 99, "Answer to a stale question.")
	require.NoError(t, err)
	require.NotNil(t, turn.Question)
	assert.Equal(t, 2, turn.Question.QuestionID)

	require.Len(t, qs.submitted, 1)
	assert.Equal(t, 99, qs.submitted[0].QuestionID)

	status, err := o.Status(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.AnswersRecorded)
}

func TestSubmitAnswerWhileAnotherIsProcessing(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{texts: []string{"First?", "Second?"}})

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	// another submit holds the processing slot
	o.registry.UpdateState(res.SessionID, models.StateProcessing)

	_, err = o.SubmitAnswer(context.Background(), res.SessionID, 1, "Racing answer.")
	require.Error(t, err)
	var resp *models.ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, "no_active_question", resp.Code)

	status, err := o.Status(res.SessionID)
	require.NoError(t, err)
	assert.Zero(t, status.AnswersRecorded, "the losing submit must not record")
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{})

	_, err := o.SubmitAnswer(context.Background(), "nope", 1, "Answer.")
	require.Error(t, err)
	var resp *models.ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, "session_not_found", resp.Code)
}

func TestFetchFailureKeepsSessionAnswerable(t *testing.T) {
	qs := &stubQuestions{texts: []string{"First?", "Second?"}}
	o := newAudioOnly(t, qs)

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	qs.nextErr = errors.New("upstream down")
	_, err = o.SubmitAnswer(context.Background(), res.SessionID, 1, "My answer.")
	require.Error(t, err)

	status, err := o.Status(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StateWaitingForAnswer, status.State)
	assert.Equal(t, 1, status.AnswersRecorded, "the answer must survive the failed fetch")
}

func TestCurrentQuestionIsIdempotent(t *testing.T) {
	qs := &stubQuestions{texts: []string{"First?", "Second?"}}
	o := newAudioOnly(t, qs)

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		turn, err := o.CurrentQuestion(context.Background(), res.SessionID)
		require.NoError(t, err)
		require.NotNil(t, turn.Question)
		assert.Equal(t, 1, turn.Question.QuestionID)
		assert.Equal(t, 1, turn.Question.CurrentQuestion)
	}
	assert.Equal(t, 1, qs.served, "re-delivery must not pull new questions")
}

func TestCurrentQuestionAfterCompletion(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{texts: []string{"Only?"}})

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)
	_, err = o.SubmitAnswer(context.Background(), res.SessionID, 1, "Done.")
	require.NoError(t, err)

	turn, err := o.CurrentQuestion(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, turn.Complete)
	assert.Nil(t, turn.Question)
}

func TestVideoModeDispatchesGeneration(t *testing.T) {
	qs := &stubQuestions{texts: []string{"First?"}}
	o := newOrchestrator(t, qs, &stubSpeech{}, "did-key")

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	q := res.Turn.Question
	require.NotNil(t, q)
	assert.Equal(t, models.AvatarVideo, q.AvatarMode)
	assert.NotEmpty(t, q.GenerationID)
	assert.Equal(t, "generating", q.VideoStatus)
	require.NotNil(t, q.IdleVideoURL)
	assert.Empty(t, q.WordTimings, "video mode carries no word timings")

	// re-delivery reuses the same generation token
	turn, err := o.CurrentQuestion(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, q.GenerationID, turn.Question.GenerationID)
}

func TestSynthesisFailureDegradesToSilentQuestion(t *testing.T) {
	voice := &stubSpeech{err: errors.New("tts quota exceeded")}
	o := newOrchestrator(t, &stubQuestions{texts: []string{"First?"}}, voice, "")

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)

	q := res.Turn.Question
	require.NotNil(t, q)
	assert.Empty(t, q.AudioBase64)
	assert.Zero(t, q.AudioDuration)
	assert.Equal(t, "First?", q.QuestionText)
}

func TestEndReturnsSummaryAndFeedback(t *testing.T) {
	qs := &stubQuestions{
		texts:    []string{"First?", "Second?"},
		feedback: map[string]interface{}{"overall_score": 8.0},
	}
	o := newAudioOnly(t, qs)

	res, err := o.Start(context.Background(), models.StartInterviewRequest{})
	require.NoError(t, err)
	_, err = o.SubmitAnswer(context.Background(), res.SessionID, 1, "Answer.")
	require.NoError(t, err)

	end, err := o.End(context.Background(), res.SessionID, "")
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, end.SessionID)
	require.NotNil(t, end.Summary)
	assert.Equal(t, models.StateCompleted, end.Summary.State)
	assert.Equal(t, 1, end.Summary.QuestionsAnswered)
	assert.Equal(t, qs.feedback, end.Feedback)

	_, err = o.End(context.Background(), res.SessionID, "")
	assert.NoError(t, err, "ending twice is harmless")
}

func TestInfoDescribesFormat(t *testing.T) {
	o := newAudioOnly(t, &stubQuestions{total: 6})

	info := o.Info()
	assert.Equal(t, 6, info.TotalQuestions)
	assert.Equal(t, 18, info.EstimatedDurationMinutes)
	assert.Equal(t, models.AvatarAudioOnly, info.AvatarMode)
	assert.Equal(t, config.DefaultPresenterID, info.PresenterID)
	assert.NotEmpty(t, info.QuestionTypes)
}
