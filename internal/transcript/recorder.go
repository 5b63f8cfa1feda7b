package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/rovelle/charbot/internal/domain"
)

// Recorder archives turns into the transcript database.
type Recorder struct {
	db *DB
}

// NewRecorder creates a recorder over an open transcript database.
func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

// RecordTurn appends one completed turn to the archive.
func (r *Recorder) RecordTurn(ctx context.Context, ev domain.TurnEvent) error {
	_, err := r.db.sql.ExecContext(ctx, `
		INSERT INTO turns (conversation_id, sender_id, sender_name, message, reply, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ConversationID, ev.SenderID, ev.SenderName, ev.Message, ev.Reply,
		ev.Duration.Milliseconds(), ev.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// Recent returns the latest n archived turns, newest first.
func (r *Recorder) Recent(ctx context.Context, n int) ([]domain.TurnEvent, error) {
	rows, err := r.db.sql.QueryContext(ctx, `
		SELECT conversation_id, sender_id, sender_name, message, reply, duration_ms, created_at
		FROM turns ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var events []domain.TurnEvent
	for rows.Next() {
		var ev domain.TurnEvent
		var durationMs int64
		var createdAt string
		if err := rows.Scan(&ev.ConversationID, &ev.SenderID, &ev.SenderName,
			&ev.Message, &ev.Reply, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		ev.Duration = time.Duration(durationMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.At = t
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Count returns the total number of archived turns.
func (r *Recorder) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return n, nil
}
