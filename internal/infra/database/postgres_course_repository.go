package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community_whatsapp_bot/internal/domain/course"
)

// Custom errors
var ErrCourseNotFound = fmt.Errorf("course not found")

type PostgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(db *sql.DB) *PostgresCourseRepository {
	return &PostgresCourseRepository{db: db}
}

const courseColumns = `id, title, description, instructor, schedule_date, status, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*course.Course, error) {
	c := &course.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Instructor, &c.ScheduleDate, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresCourseRepository) Create(ctx context.Context, c *course.Course) error {
	if c.Status == "" {
		c.Status = course.StatusDraft
	}
	query := `INSERT INTO courses (title, description, instructor, schedule_date, status)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.Title, c.Description, c.Instructor, c.ScheduleDate, c.Status).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

func (r *PostgresCourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `UPDATE courses
               SET title = $1, description = $2, instructor = $3, schedule_date = $4, status = $5
               WHERE id = $6
               RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query, c.Title, c.Description, c.Instructor, c.ScheduleDate, c.Status, c.ID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCourseNotFound
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	return nil
}

func (r *PostgresCourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted course rows: %w", err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) GetByID(ctx context.Context, id int64) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCourseRepository) List(ctx context.Context, limit int) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY schedule_date DESC LIMIT $1`
	return r.queryCourses(ctx, "error listing courses", query, limit)
}

func (r *PostgresCourseRepository) ListPublishedUpcoming(ctx context.Context, now time.Time, limit int) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses
               WHERE schedule_date >= $1 AND status = $2
               ORDER BY schedule_date ASC LIMIT $3`
	return r.queryCourses(ctx, "error listing upcoming courses", query, now, course.StatusPublished, limit)
}

func (r *PostgresCourseRepository) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses
               WHERE schedule_date BETWEEN $1 AND $2 AND status = $3
               ORDER BY schedule_date ASC`
	return r.queryCourses(ctx, "error listing courses in window", query, from, to, course.StatusPublished)
}

func (r *PostgresCourseRepository) queryCourses(ctx context.Context, errPrefix, query string, args ...any) ([]*course.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", errPrefix, err)
		}
		courses = append(courses, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", errPrefix, err)
	}
	return courses, nil
}
