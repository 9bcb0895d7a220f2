package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/db"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("chat session not found")

// Store manages persistence of chat sessions and their transcripts.
type Store struct {
	db *db.DB
}

// NewStore creates a new chat store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession creates a new chat session in the start state.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		State:     assistant.StateStart,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_name, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserName, string(sess.State), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &sess, nil
}

// GetSession returns the session with the given id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var (
		sess  Session
		state string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_name, state, created_at, updated_at FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.UserName, &state, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	sess.State = assistant.ConversationState(state)
	return &sess, nil
}

// UpdateSession stores the conversation state and user name after a turn.
func (s *Store) UpdateSession(ctx context.Context, id, userName string, state assistant.ConversationState) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET user_name = ?, state = ?, updated_at = ? WHERE id = ?`,
		userName, string(state), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AddMessage appends a message to a session, assigning the next sequence number.
func (s *Store) AddMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_id = ?`, msg.SessionID,
	).Scan(&msg.Seq); err != nil {
		return nil, fmt.Errorf("next message seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, seq, role, content, error_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Seq, string(msg.Role), msg.Content, string(msg.ErrorCode), msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}

	// Update session timestamp.
	if _, err := tx.ExecContext(ctx, `UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, msg.CreatedAt, msg.SessionID); err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing message: %w", err)
	}
	return &msg, nil
}

// GetMessages returns all messages for a session in order.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, seq, role, content, error_code, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m          Message
			role, code string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &role, &m.Content, &code, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = assistant.Role(role)
		m.ErrorCode = assistant.ErrorCode(code)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RecentTurns returns the last n messages of a session as history turns,
// oldest first.
func (s *Store) RecentTurns(ctx context.Context, sessionID string, n int) ([]assistant.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM (
			SELECT seq, role, content FROM chat_messages WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		sessionID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent turns: %w", err)
	}
	defer rows.Close()

	var turns []assistant.Turn
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, assistant.Turn{Role: assistant.Role(role), Content: content})
	}
	return turns, rows.Err()
}

// CountSessions returns the total number of chat sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&count)
	return count, err
}
