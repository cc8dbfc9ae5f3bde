package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// SessionStore persists game sessions. Get returns ErrNotFound for unknown
// ids.
type SessionStore interface {
	Get(ctx context.Context, gameID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	ActiveCountByPlayer(ctx context.Context, playerID string) (int, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*Session, error)
}

// SQLiteStore keeps sessions in a single table with a JSONB data column.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, gameID string) (*Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM sessions WHERE id = ?`, gameID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", gameID, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", gameID, err)
	}
	return &sess, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.GameID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, player_id, status, data)
		VALUES (?, ?, ?, jsonb(?))
		ON CONFLICT(id) DO UPDATE SET
			player_id = excluded.player_id,
			status    = excluded.status,
			data      = excluded.data`,
		sess.GameID, sess.PlayerID, string(sess.Status), string(data),
	)
	if err != nil {
		return fmt.Errorf("storing session %s: %w", sess.GameID, err)
	}
	return nil
}

func (s *SQLiteStore) ActiveCountByPlayer(ctx context.Context, playerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE player_id = ? AND status = 'active'`, playerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active sessions: %w", err)
	}
	return n, nil
}

// CompletionRecord summarizes a finished game for the history table.
type CompletionRecord struct {
	GameID       string
	PlayerID     string
	Title        string
	Difficulty   Difficulty
	Score        int
	DurationSecs int
	FoundRate    float64
	CompletedAt  string
}

// CompletionLog records finished games.
type CompletionLog interface {
	RecordCompletion(ctx context.Context, rec CompletionRecord) error
}

func (s *SQLiteStore) RecordCompletion(ctx context.Context, rec CompletionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_history (id, player_id, title, difficulty, score, duration_s, found_rate, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		rec.GameID, rec.PlayerID, rec.Title, string(rec.Difficulty),
		rec.Score, rec.DurationSecs, rec.FoundRate, rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("recording completion %s: %w", rec.GameID, err)
	}
	return nil
}

func (s *SQLiteStore) ListByPlayer(ctx context.Context, playerID string) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM sessions WHERE player_id = ? ORDER BY id`, playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var sess Session
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		out = append(out, &sess)
	}
	return out, rows.Err()
}
