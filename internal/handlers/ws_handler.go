package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/orchestrator"
)

// WSHandler runs an interview over one websocket connection. The protocol
// mirrors the REST flow: start, then alternating question/answer turns,
// with ping keepalives, until completion or an explicit end.
type WSHandler struct {
	orch     *orchestrator.Orchestrator
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		orch:     orch,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
	}
}

func (h *WSHandler) InterviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// the session this connection drives, set by the start message
	var sessionID string

	for {
		var msg models.WSClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case models.WSTypeStart:
			if sessionID != "" {
				h.sendError(conn, &models.ErrorResponse{
					Code:    "session_already_started",
					Message: "This connection is already running session " + sessionID,
				})
				continue
			}
			sessionID = h.handleStart(r, conn, msg.Data)
		case models.WSTypeAnswer:
			h.handleAnswer(r, conn, sessionID, msg.Data)
		case models.WSTypePing:
			h.handlePing(conn, msg.Data)
		case models.WSTypeEnd:
			h.handleEnd(r, conn, sessionID)
			return
		default:
			h.sendError(conn, &models.ErrorResponse{
				Code:    "unknown_message_type",
				Message: "Unknown message type: " + msg.Type,
			})
		}
	}

	// connection dropped mid-interview; the cleanup job expires the session
	if sessionID != "" {
		h.logger.Info("websocket disconnected", zap.String("session_id", sessionID))
	}
}

func (h *WSHandler) handleStart(r *http.Request, conn *websocket.Conn, data json.RawMessage) string {
	var req models.StartInterviewRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			h.sendError(conn, &models.ErrorResponse{
				Code:    "invalid_json",
				Message: "Invalid start payload",
			})
			return ""
		}
	}
	if err := req.Validate(); err != nil {
		h.handleOpError(conn, err)
		return ""
	}

	result, err := h.orch.Start(r.Context(), req)
	if err != nil {
		h.handleOpError(conn, err)
		return ""
	}

	info := models.WSSessionInfo{
		SessionID:      result.SessionID,
		State:          result.State,
		TotalQuestions: result.TotalQuestions,
		AvatarMode:     result.AvatarMode,
		AvatarImageURL: h.orch.Info().AvatarImageURL,
	}
	h.send(conn, models.WSTypeSessionInfo, info)
	h.sendTurn(conn, &result.Turn)
	return result.SessionID
}

func (h *WSHandler) handleAnswer(r *http.Request, conn *websocket.Conn, sessionID string, data json.RawMessage) {
	if sessionID == "" {
		h.sendError(conn, &models.ErrorResponse{
			Code:    "no_session",
			Message: "Send a start message before answering",
		})
		return
	}

	var answer models.WSAnswerData
	if err := json.Unmarshal(data, &answer); err != nil || answer.QuestionID == nil {
		h.sendError(conn, &models.ErrorResponse{
			Code:    "invalid_answer",
			Message: "Answer needs a question_id and answer_text",
		})
		return
	}

	turn, err := h.orch.SubmitAnswer(r.Context(), sessionID, *answer.QuestionID, answer.AnswerText)
	if err != nil {
		h.handleOpError(conn, err)
		return
	}
	h.sendTurn(conn, turn)
}

func (h *WSHandler) handlePing(conn *websocket.Conn, data json.RawMessage) {
	var ping models.WSPingData
	if len(data) > 0 {
		_ = json.Unmarshal(data, &ping)
	}
	h.send(conn, models.WSTypePong, models.WSPingData{Timestamp: ping.Timestamp})
}

func (h *WSHandler) handleEnd(r *http.Request, conn *websocket.Conn, sessionID string) {
	if sessionID == "" {
		h.sendError(conn, &models.ErrorResponse{
			Code:    "no_session",
			Message: "No session to end",
		})
		return
	}

	resp, err := h.orch.End(r.Context(), sessionID, "")
	if err != nil {
		h.handleOpError(conn, err)
		return
	}
	h.send(conn, models.WSTypeComplete, resp)
}

func (h *WSHandler) sendTurn(conn *websocket.Conn, turn *models.InterviewTurn) {
	if turn.Complete != nil {
		h.send(conn, models.WSTypeComplete, turn.Complete)
		return
	}
	h.send(conn, models.WSTypeQuestion, turn.Question)
}

func (h *WSHandler) handleOpError(conn *websocket.Conn, err error) {
	var resp *models.ErrorResponse
	if errors.As(err, &resp) {
		h.sendError(conn, resp)
		return
	}
	h.logger.Error("websocket interview operation failed", zap.Error(err))
	h.sendError(conn, &models.ErrorResponse{
		Code:    "operation_failed",
		Message: err.Error(),
	})
}

func (h *WSHandler) sendError(conn *websocket.Conn, resp *models.ErrorResponse) {
	h.send(conn, models.WSTypeError, resp)
}

func (h *WSHandler) send(conn *websocket.Conn, msgType string, data interface{}) {
	if err := conn.WriteJSON(models.WSServerMessage{Type: msgType, Data: data}); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
	}
}
