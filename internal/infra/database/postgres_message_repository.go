package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community_whatsapp_bot/internal/domain/message"
)

type PostgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	query := `INSERT INTO messages (user_id, message_type, content, media_url, status, message_id)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, sent_at`
	err := r.db.QueryRowContext(ctx, query, m.UserID, m.Direction, m.Content, m.MediaURL, m.Status, m.GatewayID).
		Scan(&m.ID, &m.SentAt)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) UpdateStatusByGatewayID(ctx context.Context, gatewayID, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET status = $1 WHERE message_id = $2`, status, gatewayID)
	if err != nil {
		return fmt.Errorf("error updating message status: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting old messages: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking deleted message rows: %w", err)
	}
	return affected, nil
}

func (r *PostgresMessageRepository) LogInteraction(ctx context.Context, i *message.Interaction) error {
	query := `INSERT INTO interactions (user_id, interaction_type, interaction_data)
               VALUES ($1, $2, $3)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, i.UserID, i.Type, []byte(i.Data)).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return fmt.Errorf("error logging interaction: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepository) HasReminder(ctx context.Context, userID, courseID int64) (bool, error) {
	query := `SELECT EXISTS (
               SELECT 1 FROM interactions
               WHERE user_id = $1 AND interaction_type = $2
               AND (interaction_data->>'course_id')::bigint = $3)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, message.InteractionReminderSent, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reminder interaction: %w", err)
	}
	return exists, nil
}
