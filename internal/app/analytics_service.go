package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"community_whatsapp_bot/internal/domain/analytics"
	"community_whatsapp_bot/internal/domain/message"

	"github.com/sirupsen/logrus"
)

// AnalyticsService maintains the daily metrics rollup and prunes the
// message log.
type AnalyticsService struct {
	analyticsRepo analytics.Repository
	msgRepo       message.Repository
	retention     time.Duration
	logger        *logrus.Entry
	now           func() time.Time
}

func NewAnalyticsService(
	ar analytics.Repository,
	mr message.Repository,
	retention time.Duration,
	logger *logrus.Entry,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: ar,
		msgRepo:       mr,
		retention:     retention,
		logger:        logger.WithField("component", "analytics_service"),
		now:           time.Now,
	}
}

// UpdateDailyAnalytics rolls yesterday's user and message counters into one
// analytics row. Re-running for the same date overwrites the previous row.
func (s *AnalyticsService) UpdateDailyAnalytics(ctx context.Context) error {
	yesterday := s.now().AddDate(0, 0, -1)

	userStats, err := s.analyticsRepo.UserStatsOn(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to compute user stats: %w", err)
	}
	messageStats, err := s.analyticsRepo.MessageStatsOn(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to compute message stats: %w", err)
	}

	snapshot := &analytics.Snapshot{
		Date:             yesterday,
		TotalUsers:       userStats.Total,
		ActiveUsers:      userStats.Active,
		NewUsers:         userStats.New,
		MessagesSent:     messageStats.Sent,
		MessagesReceived: messageStats.Received,
		EngagementRate:   engagementRate(messageStats.Received, userStats.Active),
	}
	if err := s.analyticsRepo.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to store analytics snapshot: %w", err)
	}

	s.logger.WithField("date", yesterday.Format("2006-01-02")).Info("Daily analytics updated")
	return nil
}

// engagementRate is received messages per active user, as a percentage
// rounded to two decimals.
func engagementRate(received, activeUsers int) float64 {
	if activeUsers == 0 {
		return 0
	}
	rate := float64(received) / float64(activeUsers) * 100
	return math.Round(rate*100) / 100
}

// CleanupOldMessages prunes message-log rows older than the retention
// period.
func (s *AnalyticsService) CleanupOldMessages(ctx context.Context) error {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.msgRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up old messages: %w", err)
	}
	s.logger.WithField("deleted", deleted).Info("Old messages cleaned up")
	return nil
}

// DashboardStats is the aggregate view served to the admin dashboard.
type DashboardStats struct {
	Users    *analytics.UserStats
	Messages *analytics.MessageStats
	Recent   []*analytics.Snapshot
}

// Dashboard returns today's live counters plus the last week of snapshots.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	today := s.now()

	userStats, err := s.analyticsRepo.UserStatsOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to compute user stats: %w", err)
	}
	messageStats, err := s.analyticsRepo.MessageStatsOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to compute message stats: %w", err)
	}
	recent, err := s.analyticsRepo.Recent(ctx, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent analytics: %w", err)
	}

	return &DashboardStats{Users: userStats, Messages: messageStats, Recent: recent}, nil
}
