package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peerprep/avatar/internal/middleware"
	"peerprep/avatar/internal/models"
)

func startSession(t *testing.T, env *testEnv) startResponse {
	t.Helper()
	h := NewInterviewHandler(env.orch, zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.StartInterviewRequest]()(http.HandlerFunc(h.StartHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interview/start",
		bytes.NewBufferString(`{"user_id":"u1","role":"Backend Engineer"}`))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp startResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestStartHandler(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"Tell me about yourself."}, total: 4}, "")

	resp := startSession(t, env)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StateWaitingForAnswer, resp.State)
	assert.Equal(t, models.AvatarAudioOnly, resp.AvatarMode)
	assert.Equal(t, 4, resp.TotalQuestions)
	require.NotNil(t, resp.Question)
	assert.Equal(t, "Tell me about yourself.", resp.Question.QuestionText)
	assert.Nil(t, resp.Complete)
}

func TestStartHandlerAcceptsEmptyBody(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}}, "")
	h := NewInterviewHandler(env.orch, zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.StartInterviewRequest]()(http.HandlerFunc(h.StartHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interview/start", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStartHandlerRejectsNegativeExperience(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}}, "")
	h := NewInterviewHandler(env.orch, zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.StartInterviewRequest]()(http.HandlerFunc(h.StartHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interview/start",
		bytes.NewBufferString(`{"experience":-2}`))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionHandlerRedelivers(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?", "Second?"}}, "")
	started := startSession(t, env)
	h := NewInterviewHandler(env.orch, zap.NewNop())

	for i := 0; i < 2; i++ {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/question", nil), "sessionID", started.SessionID)
		rec := record(h.QuestionHandler, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var q models.QuestionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
		assert.Equal(t, 1, q.QuestionID)
	}
}

func TestQuestionHandlerUnknownSession(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{}, "")
	h := NewInterviewHandler(env.orch, zap.NewNop())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/question", nil), "sessionID", "nope")
	rec := record(h.QuestionHandler, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "session_not_found", errResp.Code)
}

func postAnswer(t *testing.T, env *testEnv, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewInterviewHandler(env.orch, zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.SubmitAnswerRequest]()(http.HandlerFunc(h.AnswerHandler))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/answer", bytes.NewBufferString(body)), "sessionID", sessionID)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	return rec
}

func TestAnswerHandlerAdvances(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?", "Second?"}}, "")
	started := startSession(t, env)

	rec := postAnswer(t, env, started.SessionID, `{"question_id":1,"answer_text":"My answer."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var q models.QuestionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&q))
	assert.Equal(t, "question", q.Type)
	assert.Equal(t, 2, q.QuestionID)
}

func TestAnswerHandlerCompletes(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"Only?"}}, "")
	started := startSession(t, env)

	rec := postAnswer(t, env, started.SessionID, `{"question_id":1,"answer_text":"Done."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var complete models.CompletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&complete))
	assert.Equal(t, "complete", complete.Type)
	assert.Equal(t, 1, complete.QuestionsAnswered)
}

func TestAnswerHandlerMissingQuestionID(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}}, "")
	started := startSession(t, env)

	rec := postAnswer(t, env, started.SessionID, `{"answer_text":"No id."}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "missing_question_id", errResp.Code)
}

func TestAnswerHandlerAcceptsAnyQuestionID(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}}, "")
	started := startSession(t, env)

	// a stale id is recorded like any other answer
	rec := postAnswer(t, env, started.SessionID, `{"question_id":42,"answer_text":"Stale."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var complete models.CompletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&complete))
	assert.Equal(t, "complete", complete.Type)
	assert.Equal(t, 1, complete.QuestionsAnswered)
}

func TestEndHandler(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}, feedback: map[string]interface{}{"score": 7.0}}, "")
	started := startSession(t, env)

	h := NewInterviewHandler(env.orch, zap.NewNop())
	wrapped := middleware.ValidateRequest[*models.EndInterviewRequest]()(http.HandlerFunc(h.EndHandler))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/end", nil), "sessionID", started.SessionID)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.EndInterviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, started.SessionID, resp.SessionID)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, models.StateCompleted, resp.Summary.State)
	assert.NotNil(t, resp.Feedback)
}

func TestStatusHandler(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{texts: []string{"First?"}, total: 3}, "")
	started := startSession(t, env)

	h := NewInterviewHandler(env.orch, zap.NewNop())
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/status", nil), "sessionID", started.SessionID)
	rec := record(h.StatusHandler, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SessionStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, models.StateWaitingForAnswer, status.State)
	assert.Equal(t, 1, status.CurrentQuestion)
	assert.Equal(t, 3, status.TotalQuestions)
	assert.False(t, status.IsComplete)
}

func TestInfoHandler(t *testing.T) {
	env := newTestEnv(t, &fakeQuestions{total: 6}, "")
	h := NewInterviewHandler(env.orch, zap.NewNop())

	rec := record(h.InfoHandler, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info models.InterviewInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, 6, info.TotalQuestions)
	assert.Equal(t, models.AvatarAudioOnly, info.AvatarMode)
}
