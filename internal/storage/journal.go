package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/google/uuid"
)

// OutboundMessage is a journaled message sent to the importer.
type OutboundMessage struct {
	SentAt     time.Time
	Generation *int
	SessionID  string
	Type       protocol.MessageType
	Payload    string
	ID         int64
}

// SessionSummary describes one review session.
type SessionSummary struct {
	StartedAt      time.Time
	LastGeneration *int
	ID             string
	Server         string
	Generations    int
	Messages       int
}

// StartSession records a new review session against server and returns its id.
func (s *SQLiteStorage) StartSession(ctx context.Context, server string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(server, "server"); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, server, started_at) VALUES (?, ?, ?)`,
		id, server, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return id, nil
}

// RecordGeneration notes that set was received during the session.
func (s *SQLiteStorage) RecordGeneration(ctx context.Context, sessionID string, set model.CandidateSet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (session_id, generation, candidate_count, received_at) VALUES (?, ?, ?, ?)`,
		sessionID, set.Generation, len(set.Candidates), s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record generation %d: %w", set.Generation, err)
	}
	return nil
}

// RecordMessage journals an outbound message as JSON.
func (s *SQLiteStorage) RecordMessage(ctx context.Context, sessionID string, msg protocol.Message) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type(), err)
	}

	var generation sql.NullInt64
	if g, ok := messageGeneration(msg); ok {
		generation = sql.NullInt64{Int64: int64(g), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO outbound_messages (session_id, type, generation, payload, sent_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(msg.Type()), generation, string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record %s message: %w", msg.Type(), err)
	}
	return nil
}

// RecentMessages returns up to limit outbound messages, newest first.
func (s *SQLiteStorage) RecentMessages(ctx context.Context, limit int) ([]OutboundMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, type, generation, payload, sent_at
		FROM outbound_messages
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbound messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []OutboundMessage
	for rows.Next() {
		var (
			m          OutboundMessage
			msgType    string
			generation sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &msgType, &generation, &m.Payload, &m.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbound message: %w", err)
		}
		m.Type = protocol.MessageType(msgType)
		m.Generation = nullableInt(generation)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SessionSummaries returns up to limit sessions, most recent first.
func (s *SQLiteStorage) SessionSummaries(ctx context.Context, limit int) ([]SessionSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.server, s.started_at,
			(SELECT COUNT(*) FROM generations g WHERE g.session_id = s.id),
			(SELECT MAX(generation) FROM generations g WHERE g.session_id = s.id),
			(SELECT COUNT(*) FROM outbound_messages m WHERE m.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []SessionSummary
	for rows.Next() {
		var (
			sum  SessionSummary
			last sql.NullInt64
		)
		if err := rows.Scan(&sum.ID, &sum.Server, &sum.StartedAt, &sum.Generations, &last, &sum.Messages); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.LastGeneration = nullableInt(last)
		sessions = append(sessions, sum)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStorage) requireSession(ctx context.Context, sessionID string) error {
	if err := validateString(sessionID, "sessionID"); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: session %s", common.ErrNotFound, sessionID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}
	return nil
}

func messageGeneration(msg protocol.Message) (int, bool) {
	switch m := msg.(type) {
	case protocol.ChangeCandidate:
		return m.Generation, true
	case protocol.SelectCandidate:
		return m.Generation, true
	case protocol.Candidates:
		return m.Generation, true
	}
	return 0, false
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
