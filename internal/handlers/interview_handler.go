package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/middleware"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/orchestrator"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/speech"
	"peerprep/avatar/internal/utils"
)

type InterviewHandler struct {
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewInterviewHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		orch:   orch,
		logger: logger,
	}
}

// startResponse flattens the session info and the first turn into one
// payload so clients can render immediately.
type startResponse struct {
	SessionID      string                     `json:"session_id"`
	State          models.SessionState        `json:"state"`
	AvatarMode     models.AvatarMode          `json:"avatar_mode"`
	TotalQuestions int                        `json:"total_questions"`
	Question       *models.QuestionResponse   `json:"question,omitempty"`
	Complete       *models.CompletionResponse `json:"complete,omitempty"`
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	result, err := h.orch.Start(r.Context(), *req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, startResponse{
		SessionID:      result.SessionID,
		State:          result.State,
		AvatarMode:     result.AvatarMode,
		TotalQuestions: result.TotalQuestions,
		Question:       result.Turn.Question,
		Complete:       result.Turn.Complete,
	})
}

func (h *InterviewHandler) QuestionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turn, err := h.orch.CurrentQuestion(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeTurn(w, turn)
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)

	turn, err := h.orch.SubmitAnswer(r.Context(), sessionID, *req.QuestionID, req.AnswerText)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeTurn(w, turn)
}

func (h *InterviewHandler) EndHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	req := middleware.GetValidatedRequest[*models.EndInterviewRequest](r)

	resp, err := h.orch.End(r.Context(), sessionID, req.EndTime)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.orch.Status(sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, status)
}

func (h *InterviewHandler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.orch.Info())
}

func (h *InterviewHandler) writeTurn(w http.ResponseWriter, turn *models.InterviewTurn) {
	if turn.Complete != nil {
		utils.JSON(w, http.StatusOK, turn.Complete)
		return
	}
	utils.JSON(w, http.StatusOK, turn.Question)
}

// writeError maps orchestrator and provider errors onto HTTP statuses.
func (h *InterviewHandler) writeError(w http.ResponseWriter, err error) {
	var resp *models.ErrorResponse
	if errors.As(err, &resp) {
		utils.JSON(w, statusForCode(resp.Code), *resp)
		return
	}

	var qerr *question.ProviderError
	if errors.As(err, &qerr) {
		h.logger.Error("question provider error", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    qerr.Code,
			Message: qerr.Message,
		})
		return
	}

	var serr *speech.ProviderError
	if errors.As(err, &serr) {
		h.logger.Error("speech provider error", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    serr.Code,
			Message: serr.Message,
		})
		return
	}

	var aerr *avatar.ProviderError
	if errors.As(err, &aerr) {
		h.logger.Error("avatar provider error", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    aerr.Code,
			Message: aerr.Message,
		})
		return
	}

	h.logger.Error("unexpected interview error", zap.Error(err))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "internal_error",
		Message: "Something went wrong processing the interview",
	})
}

func statusForCode(code string) int {
	switch code {
	case "session_not_found":
		return http.StatusNotFound
	case "session_expired":
		return http.StatusGone
	case "session_completed", "no_active_question":
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
