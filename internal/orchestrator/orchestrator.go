package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/metrics"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/session"
	"peerprep/avatar/internal/speech"
)

const completionMessage = "Interview completed. Thank you for your time!"

// Orchestrator drives the interview conversation: session lifecycle,
// question flow, speech synthesis and avatar video dispatch. Handlers and
// the websocket loop are thin wrappers around it.
type Orchestrator struct {
	registry  *session.Registry
	questions question.Provider
	speech    *speech.Engine
	avatar    *avatar.Client
	tracker   *avatar.Tracker
	logger    *zap.Logger
}

func New(
	registry *session.Registry,
	questions question.Provider,
	speechEngine *speech.Engine,
	avatarClient *avatar.Client,
	tracker *avatar.Tracker,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		questions: questions,
		speech:    speechEngine,
		avatar:    avatarClient,
		tracker:   tracker,
		logger:    logger,
	}
}

// StartResult is the response to a session start: the new session plus
// its first interview turn.
type StartResult struct {
	SessionID      string               `json:"session_id"`
	State          models.SessionState  `json:"state"`
	AvatarMode     models.AvatarMode    `json:"avatar_mode"`
	TotalQuestions int                  `json:"total_questions"`
	Turn           models.InterviewTurn `json:"-"`
}

// Start creates a session, registers it with the question source and
// fetches the first question.
func (o *Orchestrator) Start(ctx context.Context, req models.StartInterviewRequest) (*StartResult, error) {
	s := o.registry.Create()

	startCtx := question.StartContext{
		UserID:         req.UserID,
		StartTime:      req.StartTime,
		ResumeText:     req.ResumeText,
		Role:           req.Role,
		Company:        req.Company,
		Experience:     req.Experience,
		JobDescription: req.JobDescription,
	}
	if err := o.questions.StartSession(ctx, s.SessionID, startCtx); err != nil {
		o.registry.Delete(s.SessionID)
		return nil, err
	}

	o.registry.UpdateState(s.SessionID, models.StateInProgress)
	o.logger.Info("interview session started",
		zap.String("session_id", s.SessionID),
		zap.String("provider", o.questions.Name()),
		zap.String("user_id", req.UserID))
	metrics.SetActiveSessions(o.registry.ActiveCount())

	turn, err := o.advance(ctx, s.SessionID, "")
	if err != nil {
		o.registry.Delete(s.SessionID)
		metrics.SetActiveSessions(o.registry.ActiveCount())
		return nil, err
	}

	current, _ := o.registry.Get(s.SessionID)
	return &StartResult{
		SessionID:      s.SessionID,
		State:          current.State,
		AvatarMode:     o.mode(),
		TotalQuestions: o.questions.TotalQuestions(),
		Turn:           *turn,
	}, nil
}

// CurrentQuestion re-delivers the question the session is waiting on.
// Safe to call repeatedly: it never advances the interview, and an
// in-flight video generation is reused rather than restarted.
func (o *Orchestrator) CurrentQuestion(ctx context.Context, sessionID string) (*models.InterviewTurn, error) {
	s, ok := o.registry.Get(sessionID)
	if !ok {
		return nil, errNotFound(sessionID)
	}
	if s.State == models.StateCompleted {
		return o.completionTurn(sessionID), nil
	}
	if s.State == models.StateExpired {
		return nil, &models.ErrorResponse{
			Code:    "session_expired",
			Message: "Session " + sessionID + " has expired",
		}
	}

	if s.CurrentQuestion == nil {
		// first delivery for a freshly created session
		return o.advance(ctx, sessionID, "")
	}

	resp, err := o.buildQuestionResponse(ctx, sessionID, *s.CurrentQuestion)
	if err != nil {
		return nil, err
	}
	return &models.InterviewTurn{Question: resp}, nil
}

// SubmitAnswer records the answer and advances to the next question or to
// completion. The submitted question id is stored as given, not compared
// against the open question. On question-source failure the answer stays
// recorded and the session returns to waiting so the client can retry the
// fetch.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answerText string) (*models.InterviewTurn, error) {
	switch o.registry.BeginAnswer(sessionID, questionID, answerText) {
	case session.AnswerSessionMissing:
		return nil, errNotFound(sessionID)
	case session.AnswerSessionClosed:
		return nil, &models.ErrorResponse{
			Code:    "session_completed",
			Message: "Session " + sessionID + " is no longer accepting answers",
		}
	case session.AnswerNotAwaited:
		return nil, &models.ErrorResponse{
			Code:    "no_active_question",
			Message: "No question is awaiting an answer",
		}
	}

	if err := o.questions.SubmitAnswer(ctx, sessionID, questionID, answerText); err != nil {
		o.registry.UpdateState(sessionID, models.StateWaitingForAnswer)
		return nil, err
	}

	return o.advance(ctx, sessionID, answerText)
}

// End closes the session regardless of progress and returns the summary
// plus any feedback from the question source.
func (o *Orchestrator) End(ctx context.Context, sessionID string, endTime string) (*models.EndInterviewResponse, error) {
	if _, ok := o.registry.Get(sessionID); !ok {
		return nil, errNotFound(sessionID)
	}

	feedback, err := o.questions.EndSession(ctx, sessionID, endTime)
	if err != nil {
		// the session still ends locally; feedback is best-effort
		o.logger.Warn("question source failed to close session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		feedback = nil
	}

	o.registry.Complete(sessionID)
	metrics.SetActiveSessions(o.registry.ActiveCount())

	summary, _ := o.registry.Summary(sessionID)
	o.logger.Info("interview session ended",
		zap.String("session_id", sessionID),
		zap.Int("questions_answered", summary.QuestionsAnswered))

	return &models.EndInterviewResponse{
		Message:   "Interview session ended",
		SessionID: sessionID,
		Summary:   &summary,
		Feedback:  feedback,
	}, nil
}

// Status reports session progress without side effects.
func (o *Orchestrator) Status(sessionID string) (*models.SessionStatusResponse, error) {
	s, ok := o.registry.Get(sessionID)
	if !ok {
		return nil, errNotFound(sessionID)
	}
	return &models.SessionStatusResponse{
		SessionID:       s.SessionID,
		State:           s.State,
		CurrentQuestion: s.QuestionsAsked,
		TotalQuestions:  o.questions.TotalQuestions(),
		AnswersRecorded: len(s.Answers),
		IsComplete:      s.State == models.StateCompleted,
	}, nil
}

// Info describes the interview format for clients before they start.
func (o *Orchestrator) Info() *models.InterviewInfoResponse {
	total := o.questions.TotalQuestions()
	estimated := 15
	if total > 0 {
		// roughly three minutes of answering per question
		estimated = total * 3
	}
	return &models.InterviewInfoResponse{
		TotalQuestions: total,
		QuestionTypes: []models.QuestionType{
			models.QuestionIntroduction,
			models.QuestionBehavioral,
			models.QuestionSituational,
			models.QuestionTechnical,
			models.QuestionGeneral,
		},
		EstimatedDurationMinutes: estimated,
		AvatarMode:               o.mode(),
		AvatarImageURL:           o.avatar.PresenterImageURL(),
		PresenterID:              o.avatar.PresenterID(),
	}
}

// advance pulls the next question from the source and moves the session
// to waiting, or completes it when the source reports exhaustion.
func (o *Orchestrator) advance(ctx context.Context, sessionID string, previousAnswer string) (*models.InterviewTurn, error) {
	q, err := o.questions.NextQuestion(ctx, sessionID, previousAnswer)
	if err != nil {
		// leave the session answerable so the client can retry
		if s, ok := o.registry.Get(sessionID); ok && s.CurrentQuestion != nil {
			o.registry.UpdateState(sessionID, models.StateWaitingForAnswer)
		}
		return nil, err
	}
	if q == nil {
		o.registry.Complete(sessionID)
		metrics.SetActiveSessions(o.registry.ActiveCount())
		return o.completionTurn(sessionID), nil
	}

	o.registry.SetCurrentQuestion(sessionID, *q)
	o.registry.UpdateState(sessionID, models.StateWaitingForAnswer)

	// re-read for the authoritative 1-based index
	s, _ := o.registry.Get(sessionID)
	resp, err := o.buildQuestionResponse(ctx, sessionID, *s.CurrentQuestion)
	if err != nil {
		return nil, err
	}
	return &models.InterviewTurn{Question: resp}, nil
}

// buildQuestionResponse synthesizes speech and, in video mode, dispatches
// background generation. Synthesis failure degrades to a silent question
// rather than failing the turn.
func (o *Orchestrator) buildQuestionResponse(ctx context.Context, sessionID string, q models.Question) (*models.QuestionResponse, error) {
	start := time.Now()
	speechRes, err := o.speech.Synthesize(ctx, q.Text)
	if err != nil {
		o.logger.Warn("speech synthesis failed, delivering silent question",
			zap.String("session_id", sessionID),
			zap.Int("question_id", q.ID),
			zap.Error(err))
		speechRes = &models.SpeechResult{WordTimings: []models.WordTiming{}}
	} else {
		metrics.ObserveSynthesis(time.Since(start))
	}

	resp := &models.QuestionResponse{
		Type:            "question",
		SessionID:       sessionID,
		QuestionID:      q.ID,
		QuestionText:    q.Text,
		QuestionType:    q.Type,
		AudioBase64:     speechRes.AudioBase64,
		AudioDuration:   speechRes.Duration,
		CurrentQuestion: q.Index,
		TotalQuestions:  o.questions.TotalQuestions(),
	}

	if o.avatar.IsConfigured() {
		resp.AvatarMode = models.AvatarVideo
		resp.VideoStatus = "generating"
		idle := o.avatar.IdleAssetURL(ctx)
		resp.IdleVideoURL = &idle

		// reuse the job from a previous delivery of this question
		if job, ok := o.tracker.Latest(sessionID, q.ID); ok {
			resp.GenerationID = job.GenerationID
			if job.Status == models.VideoCompleted {
				resp.VideoStatus = "completed"
				resp.VideoURL = &job.VideoURL
			}
		} else {
			resp.GenerationID = o.tracker.StartJob(sessionID, q.ID, q.Text)
		}
		return resp, nil
	}

	image := o.avatar.PresenterImageURL()
	resp.AvatarMode = models.AvatarAudioOnly
	resp.VideoStatus = "disabled"
	resp.AvatarImageURL = &image
	resp.WordTimings = speechRes.WordTimings
	return resp, nil
}

func (o *Orchestrator) completionTurn(sessionID string) *models.InterviewTurn {
	summary, ok := o.registry.Summary(sessionID)
	complete := &models.CompletionResponse{
		Type:    "complete",
		Message: completionMessage,
	}
	if ok {
		complete.QuestionsAnswered = summary.QuestionsAnswered
		complete.SessionSummary = &summary
	}
	return &models.InterviewTurn{Complete: complete}
}

func (o *Orchestrator) mode() models.AvatarMode {
	if o.avatar.IsConfigured() {
		return models.AvatarVideo
	}
	return models.AvatarAudioOnly
}

func errNotFound(sessionID string) *models.ErrorResponse {
	return &models.ErrorResponse{
		Code:    "session_not_found",
		Message: "Session " + sessionID + " not found",
	}
}
