// Package sqlitestore is a single-file SQLite implementation of the skill-gap persistence layer.
// It mirrors the PostgreSQL store so the CLI can run without a database server.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jonathan/skillgap/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store is a SQLite-backed store
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// modernc.org/sqlite uses _pragma=name(value) syntax
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertSkills records raw skill rows for a run
func (s *Store) InsertSkills(ctx context.Context, userID, runID uuid.UUID, rows []types.RawSkillObservation) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			var level *string
			if row.ExpertiseLevel != nil {
				l := string(*row.ExpertiseLevel)
				level = &l
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO skills (user_id, run_id, source, skill_name, score, evidence, expertise_level)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				userID.String(), runID.String(), string(row.Source), row.SkillName, row.Score, row.Evidence, level,
			); err != nil {
				return fmt.Errorf("failed to insert skill %q: %w", row.SkillName, err)
			}
		}
		return nil
	})
}

// ListSkills returns the skill rows recorded for a run from one source, in insertion order
func (s *Store) ListSkills(ctx context.Context, userID, runID uuid.UUID, source types.SkillSource) ([]types.RawSkillObservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_name, score, evidence, expertise_level
		 FROM skills
		 WHERE user_id = ? AND run_id = ? AND source = ?
		 ORDER BY id`,
		userID.String(), runID.String(), string(source),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s skills: %w", source, err)
	}
	defer rows.Close()

	observations := make([]types.RawSkillObservation, 0)
	for rows.Next() {
		var (
			obs      types.RawSkillObservation
			score    sql.NullFloat64
			evidence sql.NullString
			level    sql.NullString
		)
		if err := rows.Scan(&obs.SkillName, &score, &evidence, &level); err != nil {
			return nil, fmt.Errorf("failed to scan %s skill: %w", source, err)
		}
		if score.Valid {
			obs.Score = &score.Float64
		}
		if evidence.Valid {
			obs.Evidence = &evidence.String
		}
		if level.Valid {
			l := types.ExpertiseLevel(level.String)
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

// ListGapSkills returns the stored gaps for a user, most urgent first
func (s *Store) ListGapSkills(ctx context.Context, userID uuid.UUID) ([]types.GapSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_name, priority, reason
		 FROM gap_skills
		 WHERE user_id = ?
		 ORDER BY priority ASC, position ASC, id ASC`,
		userID.String(),
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
func (s *Store) DeleteGaps(ctx context.Context, userID, runID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM gap_skills WHERE user_id = ? AND run_id = ?`,
		userID.String(), runID.String(),
	); err != nil {
		return fmt.Errorf("failed to delete gap skills: %w", err)
	}
	return nil
}

// InsertGaps stores an ordered gap list for a run in one transaction
func (s *Store) InsertGaps(ctx context.Context, userID, runID uuid.UUID, gaps []types.GapSummary) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, g := range gaps {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO gap_skills (user_id, run_id, skill_name, priority, reason, position)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				userID.String(), runID.String(), g.SkillName, g.Priority, g.Reason, i,
			); err != nil {
				return fmt.Errorf("failed to insert gap skill %q: %w", g.SkillName, err)
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

// UpsertCourse stores a catalog course for a term and returns its id
func (s *Store) UpsertCourse(ctx context.Context, term string, course types.Course) (uuid.UUID, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO courses (id, term, subject, number, title, description, credits, course_url, last_synced)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (term, subject, number) DO UPDATE SET
		     title = excluded.title,
		     description = excluded.description,
		     credits = excluded.credits,
		     course_url = excluded.course_url,
		     last_synced = excluded.last_synced
		 RETURNING id`,
		uuid.NewString(), term, course.Subject, course.Number, course.Title,
		course.Description, course.Credits, course.URL, s.now().UTC().Format(time.RFC3339),
	).Scan(&raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert course %s: %w", course.Key(), err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid course id %q: %w", raw, err)
	}
	return id, nil
}

// ListCourses returns the courses stored for a term in subject and number order
func (s *Store) ListCourses(ctx context.Context, term string) ([]types.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, number, title, description, credits, course_url
		 FROM courses
		 WHERE term = ?
		 ORDER BY subject, number`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var (
			c           types.Course
			description sql.NullString
			credits     sql.NullFloat64
		)
		if err := rows.Scan(&c.Subject, &c.Number, &c.Title, &description, &credits, &c.URL); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		if description.Valid {
			c.Description = &description.String
		}
		if credits.Valid {
			c.Credits = &credits.Float64
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}
	return courses, nil
}

// DeleteRecommendations removes every stored recommendation for a user
func (s *Store) DeleteRecommendations(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID.String()); err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}

// InsertRecommendations stores ranked recommendations for a run
func (s *Store) InsertRecommendations(ctx context.Context, userID, runID uuid.UUID, recs []types.Recommendation) (int, error) {
	for _, rec := range recs {
		if rec.CourseID == nil {
			return 0, fmt.Errorf("recommendation for %s has no course id", rec.Course.Key())
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			matched, err := json.Marshal(rec.MatchedGaps)
			if err != nil {
				return fmt.Errorf("failed to encode matched gaps: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recommendations (user_id, run_id, course_id, rank, score, matched_gaps, explanation, confidence)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				userID.String(), runID.String(), rec.CourseID.String(), rec.Rank, rec.Score,
				string(matched), rec.Explanation, rec.Confidence,
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
func (s *Store) ListRecommendations(ctx context.Context, userID uuid.UUID) ([]types.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.course_id, r.rank, r.score, r.matched_gaps, r.explanation, r.confidence,
		        c.subject, c.number, c.title, c.course_url
		 FROM recommendations r
		 JOIN courses c ON c.id = r.course_id
		 WHERE r.user_id = ?
		 ORDER BY r.rank`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]types.Recommendation, 0)
	for rows.Next() {
		var (
			rec        types.Recommendation
			courseID   string
			matched    string
			confidence sql.NullFloat64
		)
		if err := rows.Scan(&courseID, &rec.Rank, &rec.Score, &matched, &rec.Explanation, &confidence,
			&rec.Course.Subject, &rec.Course.Number, &rec.Course.Title, &rec.Course.URL); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		id, err := uuid.Parse(courseID)
		if err != nil {
			return nil, fmt.Errorf("invalid course id %q: %w", courseID, err)
		}
		rec.CourseID = &id
		if err := json.Unmarshal([]byte(matched), &rec.MatchedGaps); err != nil {
			return nil, fmt.Errorf("failed to decode matched gaps: %w", err)
		}
		if confidence.Valid {
			rec.Confidence = &confidence.Float64
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}
