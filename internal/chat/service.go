package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

// replayTurns is how many stored messages are replayed when a request
// carries a session id but no history.
const replayTurns = 10

// Service runs chat turns and status updates for the HTTP and websocket
// transports. Sessions and the audit trail are optional.
type Service struct {
	orchestrator *assistant.Orchestrator
	sessions     *Store
	audit        *audit.Store
	logger       *zap.Logger
}

// NewService creates a Service. sessions and auditStore may be nil.
func NewService(orchestrator *assistant.Orchestrator, sessions *Store, auditStore *audit.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orchestrator: orchestrator,
		sessions:     sessions,
		audit:        auditStore,
		logger:       logger,
	}
}

// Sessions returns the session store, or nil when transcripts are not kept.
func (s *Service) Sessions() *Store {
	return s.sessions
}

// Chat processes one turn. With a session id, the stored name, state and
// recent transcript stand in for fields the request leaves empty, and both
// sides of the turn are saved.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	in := assistant.Input{
		Message:  strings.TrimSpace(req.Message),
		Screen:   req.Screen,
		History:  req.History,
		UserName: req.UserName,
		State:    req.State,
	}

	var sess *Session
	if req.SessionID != "" {
		if s.sessions == nil {
			return nil, ErrSessionNotFound
		}
		var err error
		if sess, err = s.sessions.GetSession(ctx, req.SessionID); err != nil {
			return nil, err
		}
		if in.UserName == "" {
			in.UserName = sess.UserName
		}
		if in.State == "" {
			in.State = sess.State
		}
		if len(in.History) == 0 {
			if in.History, err = s.sessions.RecentTurns(ctx, sess.ID, replayTurns); err != nil {
				return nil, err
			}
		}
	}

	if in.Message == BootstrapMessage {
		in.State = assistant.StateStart
	}

	result := s.orchestrator.Process(ctx, in)
	resp := &Response{Result: result}

	if sess != nil {
		resp.SessionID = sess.ID
		if err := s.record(ctx, sess.ID, in, result); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *Service) record(ctx context.Context, sessionID string, in assistant.Input, result assistant.Result) error {
	if in.Message != BootstrapMessage && in.Message != "" {
		if _, err := s.sessions.AddMessage(ctx, Message{
			SessionID: sessionID,
			Role:      assistant.RoleUser,
			Content:   in.Message,
		}); err != nil {
			return fmt.Errorf("storing user message: %w", err)
		}
	}
	if _, err := s.sessions.AddMessage(ctx, Message{
		SessionID: sessionID,
		Role:      assistant.RoleAssistant,
		Content:   result.Response,
		ErrorCode: result.Error,
	}); err != nil {
		return fmt.Errorf("storing reply: %w", err)
	}

	name := in.UserName
	if result.UserName != "" {
		name = result.UserName
	}
	return s.sessions.UpdateSession(ctx, sessionID, name, result.State)
}

// UpdateStatus applies a status change and records it in the audit trail.
// A failed audit write is logged and does not undo the change.
func (s *Service) UpdateStatus(ctx context.Context, eventID string, req StatusRequest, actor audit.ActorType) assistant.StatusResult {
	res := s.orchestrator.UpdateStatus(ctx, eventID, req.Status)
	if !res.Success || s.audit == nil {
		return res
	}

	change := events.StatusChange{EventID: res.EventID, Previous: res.Previous, Current: res.Status}
	entry := audit.StatusChangeEntry(change, actor, req.Actor, req.SessionID)
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("audit log failed", zap.String("event_id", eventID), zap.Error(err))
	}
	return res
}
