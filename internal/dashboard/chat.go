package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format. Type is "message"
// for a chat turn or "status" for a status update of EventID.
type chatRequest struct {
	Type      string                      `json:"type"`
	SessionID string                      `json:"session_id"`
	Content   string                      `json:"content"`
	Screen    *assistant.ScreenContext    `json:"contexto_tela,omitempty"`
	UserName  string                      `json:"nome_usuario,omitempty"`
	State     assistant.ConversationState `json:"conversation_state,omitempty"`
	EventID   string                      `json:"evento_id,omitempty"`
	Status    string                      `json:"status,omitempty"`
}

// chatResponse is the outgoing WebSocket message format. Type is "response",
// "status" or "error".
type chatResponse struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"session_id"`
	Content   string                  `json:"content"`
	Turn      *assistant.Result       `json:"turn,omitempty"`
	Update    *assistant.StatusResult `json:"update,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The socket outlives the request timeout middleware and the server's
	// write timeout.
	ctx := context.WithoutCancel(r.Context())
	_ = conn.NetConn().SetDeadline(time.Time{})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "message":
			if req.Content == "" {
				d.sendError(conn, req.SessionID, "content is required")
				continue
			}
			d.handleChatMessage(ctx, conn, req)
		case "status":
			if req.EventID == "" {
				d.sendError(conn, req.SessionID, "evento_id is required")
				continue
			}
			d.handleStatusMessage(ctx, conn, req)
		default:
			d.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (d *Dashboard) handleChatMessage(ctx context.Context, conn *websocket.Conn, req chatRequest) {
	if d.chat == nil {
		d.sendError(conn, req.SessionID, "assistant not configured")
		return
	}

	sessionID := req.SessionID

	// Create a new session if needed.
	if sessionID == "" && d.chat.Sessions() != nil {
		sess, err := d.chat.Sessions().CreateSession(ctx)
		if err != nil {
			d.logger.Error("creating session failed", zap.Error(err))
			d.sendError(conn, "", "failed to create session")
			return
		}
		sessionID = sess.ID
	}

	resp, err := d.chat.Chat(ctx, chat.Request{
		Message:   req.Content,
		Screen:    req.Screen,
		UserName:  req.UserName,
		State:     req.State,
		SessionID: sessionID,
	})
	if errors.Is(err, chat.ErrSessionNotFound) {
		d.sendError(conn, sessionID, "session not found")
		return
	}
	if err != nil {
		d.logger.Error("chat turn failed", zap.String("session_id", sessionID), zap.Error(err))
		d.sendError(conn, sessionID, "processing failed")
		return
	}

	d.sendResponse(conn, chatResponse{
		Type:      "response",
		SessionID: sessionID,
		Content:   resp.Response,
		Turn:      &resp.Result,
	})
}

func (d *Dashboard) handleStatusMessage(ctx context.Context, conn *websocket.Conn, req chatRequest) {
	if d.chat == nil {
		d.sendError(conn, req.SessionID, "assistant not configured")
		return
	}

	res := d.chat.UpdateStatus(ctx, req.EventID, chat.StatusRequest{
		Status:    req.Status,
		Actor:     req.UserName,
		SessionID: req.SessionID,
	}, audit.ActorUser)

	content := res.Reason
	if res.Success {
		content = "Status de " + res.EventID + " atualizado para " + string(res.Status)
	}
	d.sendResponse(conn, chatResponse{
		Type:      "status",
		SessionID: req.SessionID,
		Content:   content,
		Update:    &res,
	})
}

func (d *Dashboard) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write failed", zap.Error(err))
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write failed", zap.Error(err))
	}
}
