package models

import "encoding/json"

// WebSocket message types. Client to server: start, answer, ping, end.
// Server to client: session_info, question, complete, error, pong.
const (
	WSTypeStart  = "start"
	WSTypeAnswer = "answer"
	WSTypePing   = "ping"
	WSTypeEnd    = "end"

	WSTypeSessionInfo = "session_info"
	WSTypeQuestion    = "question"
	WSTypeComplete    = "complete"
	WSTypeError       = "error"
	WSTypePong        = "pong"
)

// WSClientMessage is the envelope for all client messages. Data is decoded
// lazily per message type.
type WSClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WSServerMessage is the envelope for all server messages.
type WSServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WSAnswerData is the payload of an "answer" client message.
type WSAnswerData struct {
	QuestionID *int   `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// WSPingData carries an optional client timestamp echoed back in the pong.
type WSPingData struct {
	Timestamp json.Number `json:"timestamp,omitempty"`
}

// WSSessionInfo is sent immediately after a client connects.
type WSSessionInfo struct {
	SessionID      string       `json:"session_id"`
	State          SessionState `json:"state"`
	TotalQuestions int          `json:"total_questions"`
	AvatarMode     AvatarMode   `json:"avatar_mode"`
	AvatarImageURL string       `json:"avatar_image_url"`
}
