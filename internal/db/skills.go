package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/skillgap/internal/types"
)

// ListSkills returns the skill rows recorded for a run from one source
func (db *DB) ListSkills(ctx context.Context, userID, runID uuid.UUID, source types.SkillSource) ([]types.RawSkillObservation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT skill_name, score, evidence, expertise_level
		 FROM skills
		 WHERE user_id = $1 AND run_id = $2 AND source = $3
		 ORDER BY created_at, id`,
		userID, runID, string(source),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s skills: %w", source, err)
	}
	defer rows.Close()

	observations := make([]types.RawSkillObservation, 0)
	for rows.Next() {
		var (
			obs   types.RawSkillObservation
			level *string
		)
		if err := rows.Scan(&obs.SkillName, &obs.Score, &obs.Evidence, &level); err != nil {
			return nil, fmt.Errorf("failed to scan %s skill: %w", source, err)
		}
		if level != nil {
			l := types.ExpertiseLevel(*level)
			obs.ExpertiseLevel = &l
		}
		obs.Source = source
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s skills: %w", source, err)
	}
	return observations, nil
}

// InsertSkills records raw skill rows for a run
func (db *DB) InsertSkills(ctx context.Context, userID, runID uuid.UUID, rows []types.RawSkillObservation) error {
	if len(rows) == 0 {
		return nil
	}
	return db.withTx(ctx, func(tx pgx.Tx) error {
		for _, row := range rows {
			var level *string
			if row.ExpertiseLevel != nil {
				l := string(*row.ExpertiseLevel)
				level = &l
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO skills (user_id, run_id, source, skill_name, score, evidence, expertise_level)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				userID, runID, string(row.Source), row.SkillName, row.Score, row.Evidence, level,
			); err != nil {
				return fmt.Errorf("failed to insert skill %q: %w", row.SkillName, err)
			}
		}
		return nil
	})
}
