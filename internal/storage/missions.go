package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/starwatch-app/starwatch/internal/model"
	"github.com/starwatch-app/starwatch/internal/telemetry"
)

// ArchiveMission upserts a terminal mission. Re-archiving the same id (a
// replayed session end, for instance) overwrites the previous row.
func (db *DB) ArchiveMission(ctx context.Context, m *model.Mission) error {
	ctx, span := telemetry.Tracer("starwatch/storage").Start(ctx, "storage.archive_mission")
	defer span.End()
	span.SetAttributes(
		attribute.String("mission.id", m.ID),
		attribute.String("mission.status", string(m.Status)),
	)

	objectives, err := json.Marshal(m.Objectives)
	if err != nil {
		return fmt.Errorf("storage: marshal objectives: %w", err)
	}

	_, err = db.db.ExecContext(ctx, `
		INSERT INTO missions (id, name, status, accepted_at, objective_text, objectives, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			objective_text = excluded.objective_text,
			objectives = excluded.objectives,
			archived_at = excluded.archived_at`,
		m.ID, m.Name, string(m.Status), m.AcceptedAt.UTC(),
		m.CurrentObjectiveText, string(objectives), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage: archive mission %s: %w", m.ID, err)
	}
	return nil
}

// GetMission loads one archived mission by id.
func (db *DB) GetMission(ctx context.Context, id string) (*model.Mission, error) {
	row := db.db.QueryRowContext(ctx, `
		SELECT id, name, status, accepted_at, objective_text, objectives
		FROM missions WHERE id = ?`, id)

	m, err := scanMission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get mission %s: %w", id, err)
	}
	return m, nil
}

// RecentMissions lists archived missions, most recently archived first.
func (db *DB) RecentMissions(ctx context.Context, limit int) ([]*model.Mission, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, name, status, accepted_at, objective_text, objectives
		FROM missions ORDER BY archived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list missions: %w", err)
	}
	defer rows.Close()

	var missions []*model.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan mission: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMission(row rowScanner) (*model.Mission, error) {
	var m model.Mission
	var status, objectives string
	if err := row.Scan(&m.ID, &m.Name, &status, &m.AcceptedAt, &m.CurrentObjectiveText, &objectives); err != nil {
		return nil, err
	}
	m.Status = model.MissionStatus(status)
	if err := json.Unmarshal([]byte(objectives), &m.Objectives); err != nil {
		return nil, err
	}
	return &m, nil
}
