package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/skillgap/internal/types"
)

// ListGapSkills returns the stored gaps for a user, most urgent first
func (db *DB) ListGapSkills(ctx context.Context, userID uuid.UUID) ([]types.GapSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT skill_name, priority, reason
		 FROM gap_skills
		 WHERE user_id = $1
		 ORDER BY priority ASC, position ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gap skills: %w", err)
	}
	defer rows.Close()

	gaps := make([]types.GapSummary, 0)
	for rows.Next() {
		var g types.GapSummary
		if err := rows.Scan(&g.SkillName, &g.Priority, &g.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan gap skill: %w", err)
		}
		gaps = append(gaps, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gap skills: %w", err)
	}
	return gaps, nil
}

// DeleteGaps removes the gaps stored for a (user, run) pair
func (db *DB) DeleteGaps(ctx context.Context, userID, runID uuid.UUID) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM gap_skills WHERE user_id = $1 AND run_id = $2`,
		userID, runID,
	); err != nil {
		return fmt.Errorf("failed to delete gap skills: %w", err)
	}
	return nil
}

// InsertGaps stores an ordered gap list for a run in one transaction and returns the number of rows inserted
func (db *DB) InsertGaps(ctx context.Context, userID, runID uuid.UUID, gaps []types.GapSummary) (int, error) {
	if len(gaps) == 0 {
		return 0, nil
	}

	inserted := 0
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, g := range gaps {
			batch.Queue(
				`INSERT INTO gap_skills (user_id, run_id, skill_name, priority, reason, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				userID, runID, g.SkillName, g.Priority, g.Reason, i,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range gaps {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert gap skill: %w", err)
			}
			inserted++
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to insert gap skills: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
