package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community_whatsapp_bot/internal/domain/content"
)

// Custom errors
var ErrContentNotFound = fmt.Errorf("scheduled content not found")

type PostgresContentRepository struct {
	db *sql.DB
}

func NewPostgresContentRepository(db *sql.DB) *PostgresContentRepository {
	return &PostgresContentRepository{db: db}
}

const contentColumns = `id, content_type, content, media_url, target_audience, schedule_time, status, sent_count, failed_count, created_at`

func scanContent(row interface{ Scan(...any) error }) (*content.Item, error) {
	item := &content.Item{}
	err := row.Scan(&item.ID, &item.ContentType, &item.Content, &item.MediaURL, &item.TargetAudience,
		&item.ScheduleTime, &item.Status, &item.SentCount, &item.FailedCount, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresContentRepository) Create(ctx context.Context, item *content.Item) error {
	if item.ContentType == "" {
		item.ContentType = content.TypeAnnouncement
	}
	item.Status = content.StatusPending

	query := `INSERT INTO scheduled_content (content_type, content, media_url, target_audience, schedule_time, status)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, item.ContentType, item.Content, item.MediaURL,
		item.TargetAudience, item.ScheduleTime, item.Status).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating scheduled content: %w", err)
	}
	return nil
}

func (r *PostgresContentRepository) GetByID(ctx context.Context, id int64) (*content.Item, error) {
	query := `SELECT ` + contentColumns + ` FROM scheduled_content WHERE id = $1`
	item, err := scanContent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("error getting scheduled content by ID: %w", err)
	}
	return item, nil
}

func (r *PostgresContentRepository) List(ctx context.Context, limit int) ([]*content.Item, error) {
	query := `SELECT ` + contentColumns + ` FROM scheduled_content ORDER BY schedule_time DESC LIMIT $1`
	return r.queryItems(ctx, "error listing scheduled content", query, limit)
}

func (r *PostgresContentRepository) ListDuePending(ctx context.Context, now time.Time, limit int) ([]*content.Item, error) {
	query := `SELECT ` + contentColumns + ` FROM scheduled_content
               WHERE status = $1 AND schedule_time <= $2
               ORDER BY schedule_time ASC LIMIT $3`
	return r.queryItems(ctx, "error listing due pending content", query, content.StatusPending, now, limit)
}

func (r *PostgresContentRepository) MarkSent(ctx context.Context, id int64, sentCount, failedCount int) error {
	query := `UPDATE scheduled_content SET status = $1, sent_count = $2, failed_count = $3 WHERE id = $4`
	return r.finalize(ctx, "error marking content sent", query, content.StatusSent, sentCount, failedCount, id)
}

func (r *PostgresContentRepository) MarkFailed(ctx context.Context, id int64) error {
	query := `UPDATE scheduled_content SET status = $1 WHERE id = $2`
	return r.finalize(ctx, "error marking content failed", query, content.StatusFailed, id)
}

func (r *PostgresContentRepository) finalize(ctx context.Context, errPrefix, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", errPrefix, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: checking rows: %w", errPrefix, err)
	}
	if affected == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *PostgresContentRepository) queryItems(ctx context.Context, errPrefix, query string, args ...any) ([]*content.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	defer rows.Close()

	items := make([]*content.Item, 0)
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", errPrefix, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", errPrefix, err)
	}
	return items, nil
}
