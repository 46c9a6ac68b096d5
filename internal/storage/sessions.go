package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/starwatch-app/starwatch/internal/telemetry"
)

// SessionSummary is one game session's closing snapshot.
type SessionSummary struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	PilotHandle    string
	Build          string
	Shard          string
	Kills          int
	Deaths         int
	Completed      int
	Failed         int
	LinesProcessed int64
}

// SaveSessionSummary persists a session summary, assigning an ID when empty.
func (db *DB) SaveSessionSummary(ctx context.Context, s SessionSummary) (SessionSummary, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now().UTC()
	}

	ctx, span := telemetry.Tracer("starwatch/storage").Start(ctx, "storage.save_session")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.ID),
		attribute.Int64("session.lines_processed", s.LinesProcessed),
	)

	_, err := db.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, ended_at, pilot_handle, build, shard,
			kills, deaths, completed, failed, lines_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt.UTC(), s.EndedAt.UTC(), s.PilotHandle, s.Build, s.Shard,
		s.Kills, s.Deaths, s.Completed, s.Failed, s.LinesProcessed,
	)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("storage: save session %s: %w", s.ID, err)
	}
	return s, nil
}

// RecentSessions lists session summaries, most recent first.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, pilot_handle, build, shard,
			kills, deaths, completed, failed, lines_processed
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.PilotHandle, &s.Build, &s.Shard,
			&s.Kills, &s.Deaths, &s.Completed, &s.Failed, &s.LinesProcessed); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
