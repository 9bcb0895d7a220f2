package chat

import (
	"time"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
)

// BootstrapMessage is sent by the dashboard when the chat opens. It starts a
// conversation and is never stored as a user turn.
const BootstrapMessage = "__INICIO__"

// Request is the body of POST /api/yoyo/chat. When SessionID is set, missing
// history, name and state are filled from the stored session.
type Request struct {
	Message   string                      `json:"mensagem"`
	Screen    *assistant.ScreenContext    `json:"contexto_tela,omitempty"`
	History   []assistant.Turn            `json:"historico,omitempty"`
	UserName  string                      `json:"nome_usuario,omitempty"`
	State     assistant.ConversationState `json:"conversation_state,omitempty"`
	SessionID string                      `json:"session_id,omitempty"`
}

// Response is a turn result plus the session it was stored under.
type Response struct {
	assistant.Result
	SessionID string `json:"session_id,omitempty"`
}

// Session is a persisted conversation.
type Session struct {
	ID        string                      `json:"id"`
	UserName  string                      `json:"nome_usuario"`
	State     assistant.ConversationState `json:"conversation_state"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Message is one stored turn of a session.
type Message struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Seq       int                 `json:"seq"`
	Role      assistant.Role      `json:"role"`
	Content   string              `json:"content"`
	ErrorCode assistant.ErrorCode `json:"erro,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// StatusRequest is the body of PATCH /api/eventos/{id}/status.
type StatusRequest struct {
	Status    string `json:"status"`
	Actor     string `json:"actor,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}
