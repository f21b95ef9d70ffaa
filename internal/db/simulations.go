package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ats-simulator/internal/ingestion"
	"github.com/jonathan/ats-simulator/internal/types"
)

// SaveSimulation inserts rec. A nil ID or zero CreatedAt is filled in.
func (db *DB) SaveSimulation(ctx context.Context, rec *types.SimulationRecord) error {
	if rec.Result == nil {
		return fmt.Errorf("simulation record has no result")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO simulations
		   (id, user_id, application_id, target_role_raw, target_comp, resume_text, resume_hash,
		    overall_score, status, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.UserID, rec.ApplicationID, rec.TargetRoleRaw, rec.TargetComp,
		rec.ResumeText, ingestion.ContentHash(rec.ResumeText),
		rec.Result.Scorecard.OverallScore, string(rec.Result.Scorecard.Status), result, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save simulation: %w", err)
	}
	return nil
}

// GetSimulation returns the record with id, or ErrNotFound.
func (db *DB) GetSimulation(ctx context.Context, id uuid.UUID) (*types.SimulationRecord, error) {
	var (
		rec    types.SimulationRecord
		result []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, application_id, target_role_raw, target_comp, resume_text, result, created_at
		 FROM simulations WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.UserID, &rec.ApplicationID, &rec.TargetRoleRaw, &rec.TargetComp,
		&rec.ResumeText, &result, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get simulation %s: %w", id, err)
	}

	rec.Result = &types.SimulationResult{}
	if err := json.Unmarshal(result, rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation %s: %w", id, err)
	}
	return &rec, nil
}

// LatestResumeText returns the normalized resume text of the most recent
// simulation userID ran for applicationID, or nil when there is none.
// Records of other users never match, including the anonymous user "".
func (db *DB) LatestResumeText(ctx context.Context, userID, applicationID string) (*string, error) {
	if applicationID == "" {
		return nil, nil
	}
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT resume_text FROM simulations
		 WHERE application_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT 1`,
		applicationID, userID,
	).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest resume for application %s: %w", applicationID, err)
	}
	return &text, nil
}

// ListSimulations returns the most recent records for userID, newest first,
// without resume text.
func (db *DB) ListSimulations(ctx context.Context, userID string, limit int) ([]SimulationSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, application_id, overall_score, status, created_at
		 FROM simulations
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	defer rows.Close()

	summaries := []SimulationSummary{}
	for rows.Next() {
		var s SimulationSummary
		if err := rows.Scan(&s.ID, &s.ApplicationID, &s.OverallScore, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	return summaries, nil
}
