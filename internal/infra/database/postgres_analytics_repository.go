package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community_whatsapp_bot/internal/domain/analytics"
)

type PostgresAnalyticsRepository struct {
	db *sql.DB
}

func NewPostgresAnalyticsRepository(db *sql.DB) *PostgresAnalyticsRepository {
	return &PostgresAnalyticsRepository{db: db}
}

func (r *PostgresAnalyticsRepository) Upsert(ctx context.Context, s *analytics.Snapshot) error {
	query := `INSERT INTO analytics (date, total_users, active_users, new_users, messages_sent, messages_received, engagement_rate)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (date) DO UPDATE SET
                 total_users = EXCLUDED.total_users,
                 active_users = EXCLUDED.active_users,
                 new_users = EXCLUDED.new_users,
                 messages_sent = EXCLUDED.messages_sent,
                 messages_received = EXCLUDED.messages_received,
                 engagement_rate = EXCLUDED.engagement_rate`
	_, err := r.db.ExecContext(ctx, query, s.Date, s.TotalUsers, s.ActiveUsers, s.NewUsers,
		s.MessagesSent, s.MessagesReceived, s.EngagementRate)
	if err != nil {
		return fmt.Errorf("error upserting analytics snapshot: %w", err)
	}
	return nil
}

func (r *PostgresAnalyticsRepository) UserStatsOn(ctx context.Context, date time.Time) (*analytics.UserStats, error) {
	query := `SELECT
               COUNT(*),
               COUNT(*) FILTER (WHERE is_active),
               COUNT(*) FILTER (WHERE joined_at::date = $1::date)
               FROM users`
	s := &analytics.UserStats{}
	err := r.db.QueryRowContext(ctx, query, date).Scan(&s.Total, &s.Active, &s.New)
	if err != nil {
		return nil, fmt.Errorf("error computing user stats: %w", err)
	}
	return s, nil
}

func (r *PostgresAnalyticsRepository) MessageStatsOn(ctx context.Context, date time.Time) (*analytics.MessageStats, error) {
	query := `SELECT
               COUNT(*) FILTER (WHERE message_type = 'outgoing'),
               COUNT(*) FILTER (WHERE message_type = 'incoming')
               FROM messages WHERE sent_at::date = $1::date`
	s := &analytics.MessageStats{}
	err := r.db.QueryRowContext(ctx, query, date).Scan(&s.Sent, &s.Received)
	if err != nil {
		return nil, fmt.Errorf("error computing message stats: %w", err)
	}
	return s, nil
}

func (r *PostgresAnalyticsRepository) Recent(ctx context.Context, days int) ([]*analytics.Snapshot, error) {
	query := `SELECT date, total_users, active_users, new_users, messages_sent, messages_received, engagement_rate
               FROM analytics ORDER BY date DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("error listing recent analytics: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*analytics.Snapshot, 0)
	for rows.Next() {
		s := &analytics.Snapshot{}
		if err := rows.Scan(&s.Date, &s.TotalUsers, &s.ActiveUsers, &s.NewUsers,
			&s.MessagesSent, &s.MessagesReceived, &s.EngagementRate); err != nil {
			return nil, fmt.Errorf("error scanning analytics snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics snapshots: %w", err)
	}
	return snapshots, nil
}
