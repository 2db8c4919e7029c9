package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"community_whatsapp_bot/internal/domain/course"
	"community_whatsapp_bot/internal/domain/message"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"

	"github.com/sirupsen/logrus"
)

// ReminderService surfaces upcoming published courses to every active user
// as a paced reminder broadcast.
type ReminderService struct {
	courseRepo course.Repository
	userRepo   user.Repository
	msgRepo    message.Repository
	client     whatsapp.Client
	pacer      Pacer
	window     time.Duration
	logger     *logrus.Entry
	now        func() time.Time
}

func NewReminderService(
	cr course.Repository,
	ur user.Repository,
	mr message.Repository,
	client whatsapp.Client,
	pacer Pacer,
	window time.Duration,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		courseRepo: cr,
		userRepo:   ur,
		msgRepo:    mr,
		client:     client,
		pacer:      pacer,
		window:     window,
		logger:     logger.WithField("component", "reminder_service"),
		now:        time.Now,
	}
}

// ProcessReminders fans out a reminder for every published course inside the
// lookahead window. Each user receives at most one reminder per course; the
// interaction log is the dedupe marker. Per-recipient failures are logged
// and skipped, never aborting the remaining recipients or courses.
func (s *ReminderService) ProcessReminders(ctx context.Context) error {
	now := s.now()
	courses, err := s.courseRepo.ListPublishedBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("failed to list upcoming courses: %w", err)
	}
	if len(courses) == 0 {
		return nil
	}

	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	for _, c := range courses {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.sendCourseReminder(ctx, c, users, now)
	}
	return nil
}

func (s *ReminderService) sendCourseReminder(ctx context.Context, c *course.Course, users []*user.User, now time.Time) {
	logCtx := s.logger.WithField("course_id", c.ID)
	body := s.formatReminder(c, now)

	delivered := 0
	attempted := false
	for _, u := range users {
		if ctx.Err() != nil {
			logCtx.Warn("Reminder fan-out canceled; draining remaining users")
			return
		}

		already, err := s.msgRepo.HasReminder(ctx, u.ID, c.ID)
		if err != nil {
			logCtx.WithError(err).WithField("user_id", u.ID).Error("Reminder dedupe check failed; skipping user")
			continue
		}
		if already {
			continue
		}

		// Pace between consecutive sends only; no delay before the first
		// or after the last.
		if attempted {
			s.pacer.Wait(ctx)
		}
		attempted = true

		if _, err := s.client.SendText(ctx, u.PhoneNumber, body); err != nil {
			logCtx.WithError(err).WithField("phone_number", u.PhoneNumber).Error("Failed to send reminder")
		} else {
			delivered++
			s.logReminderInteraction(ctx, u.ID, c.ID)
		}
	}

	logCtx.WithField("delivered", delivered).Info("Course reminder processed")
}

func (s *ReminderService) logReminderInteraction(ctx context.Context, userID, courseID int64) {
	payload, err := json.Marshal(map[string]int64{"course_id": courseID})
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode reminder payload")
		return
	}
	i := &message.Interaction{UserID: userID, Type: message.InteractionReminderSent, Data: payload}
	if err := s.msgRepo.LogInteraction(ctx, i); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to log reminder interaction")
	}
}

func (s *ReminderService) formatReminder(c *course.Course, now time.Time) string {
	hoursUntil := int(math.Round(c.ScheduleDate.Sub(now).Hours()))
	description := ""
	if c.Description.Valid {
		description = c.Description.String
	}

	return fmt.Sprintf(`⏰ *تذكير بدورة قادمة*

📚 %s

⏱️ الموعد: %s

⌛ متبقي: %d ساعة

%s

نراك قريباً! 🚀`,
		c.Title,
		c.ScheduleDate.Format("Monday, 2 January 2006 - 15:04"),
		hoursUntil,
		description,
	)
}
