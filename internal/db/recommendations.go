package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/skillgap/internal/types"
)

// DeleteRecommendations removes every stored recommendation for a user
func (db *DB) DeleteRecommendations(ctx context.Context, userID uuid.UUID) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM recommendations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}

// InsertRecommendations stores ranked recommendations for a run.
// Every recommendation must carry the id of an upserted course.
func (db *DB) InsertRecommendations(ctx context.Context, userID, runID uuid.UUID, recs []types.Recommendation) (int, error) {
	for _, rec := range recs {
		if rec.CourseID == nil {
			return 0, fmt.Errorf("recommendation for %s has no course id", rec.Course.Key())
		}
	}

	inserted := 0
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO recommendations (user_id, run_id, course_id, rank, score, matched_gaps, explanation, confidence)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				userID, runID, *rec.CourseID, rec.Rank, rec.Score, rec.MatchedGaps, rec.Explanation, rec.Confidence,
			); err != nil {
				return fmt.Errorf("failed to insert recommendation for %s: %w", rec.Course.Key(), err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListRecommendations returns the stored recommendations for a user in rank order
func (db *DB) ListRecommendations(ctx context.Context, userID uuid.UUID) ([]types.Recommendation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT r.course_id, r.rank, r.score, r.matched_gaps, r.explanation, r.confidence,
		        c.subject, c.number, c.title, c.description, c.credits, c.course_url
		 FROM recommendations r
		 JOIN courses c ON c.id = r.course_id
		 WHERE r.user_id = $1
		 ORDER BY r.rank`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]types.Recommendation, 0)
	for rows.Next() {
		var (
			rec      types.Recommendation
			courseID uuid.UUID
		)
		if err := rows.Scan(&courseID, &rec.Rank, &rec.Score, &rec.MatchedGaps, &rec.Explanation, &rec.Confidence,
			&rec.Course.Subject, &rec.Course.Number, &rec.Course.Title, &rec.Course.Description,
			&rec.Course.Credits, &rec.Course.URL); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.CourseID = &courseID
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}
