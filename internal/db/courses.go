package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/skillgap/internal/types"
)

// UpsertCourse stores a catalog course for a term and returns its id.
// A course is identified by (term, subject, number); later syncs refresh its details.
func (db *DB) UpsertCourse(ctx context.Context, term string, course types.Course) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO courses (term, subject, number, title, description, credits, course_url, last_synced)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (term, subject, number) DO UPDATE SET
		     title = EXCLUDED.title,
		     description = EXCLUDED.description,
		     credits = EXCLUDED.credits,
		     course_url = EXCLUDED.course_url,
		     last_synced = NOW()
		 RETURNING id`,
		term, course.Subject, course.Number, course.Title, course.Description, course.Credits, course.URL,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert course %s: %w", course.Key(), err)
	}
	return id, nil
}

// ListCourses returns the courses stored for a term in subject and number order
func (db *DB) ListCourses(ctx context.Context, term string) ([]types.Course, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT subject, number, title, description, credits, course_url
		 FROM courses
		 WHERE term = $1
		 ORDER BY subject, number`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var c types.Course
		if err := rows.Scan(&c.Subject, &c.Number, &c.Title, &c.Description, &c.Credits, &c.URL); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}
	return courses, nil
}
