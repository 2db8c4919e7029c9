package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"community_whatsapp_bot/internal/domain/course"
	"community_whatsapp_bot/internal/domain/message"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"
	idb "community_whatsapp_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

const (
	coursesMenuLimit  = 5
	scheduleMenuLimit = 7
)

// SupportContacts are the escalation details shown by the support menu.
type SupportContacts struct {
	Email string
	Phone string
}

// InboundService classifies one inbound user message and produces a reply.
// Each message is handled independently; no conversation state is retained.
type InboundService struct {
	userRepo   user.Repository
	courseRepo course.Repository
	msgRepo    message.Repository
	faq        *FAQService
	client     whatsapp.Client
	support    SupportContacts
	logger     *logrus.Entry
	now        func() time.Time
}

func NewInboundService(
	ur user.Repository,
	cr course.Repository,
	mr message.Repository,
	faqSvc *FAQService,
	client whatsapp.Client,
	support SupportContacts,
	logger *logrus.Entry,
) *InboundService {
	return &InboundService{
		userRepo:   ur,
		courseRepo: cr,
		msgRepo:    mr,
		faq:        faqSvc,
		client:     client,
		support:    support,
		logger:     logger.WithField("component", "inbound_service"),
		now:        time.Now,
	}
}

// HandleIncoming registers the sender if necessary, logs the message,
// classifies it and sends the reply back through the gateway. Reply
// delivery failures are logged; they never fail the webhook acknowledgment.
func (s *InboundService) HandleIncoming(ctx context.Context, phoneNumber, text string) error {
	logCtx := s.logger.WithField("phone_number", phoneNumber)

	u, err := s.ensureUser(ctx, phoneNumber)
	if err != nil {
		return fmt.Errorf("failed to register sender: %w", err)
	}

	incoming := &message.Message{
		UserID:    u.ID,
		Direction: message.DirectionIncoming,
		Content:   text,
		Status:    "received",
	}
	if err := s.msgRepo.Create(ctx, incoming); err != nil {
		logCtx.WithError(err).Error("Failed to log incoming message")
	}
	if err := s.userRepo.TouchLastActive(ctx, u.ID); err != nil {
		logCtx.WithError(err).Error("Failed to update last_active")
	}

	reply := s.BuildReply(ctx, u.ID, text)
	if reply == "" {
		return nil
	}
	if _, err := s.client.SendText(ctx, phoneNumber, reply); err != nil {
		logCtx.WithError(err).Error("Failed to send reply")
	}
	return nil
}

func (s *InboundService) ensureUser(ctx context.Context, phoneNumber string) (*user.User, error) {
	u, err := s.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err == nil {
		return u, nil
	}
	if err != idb.ErrUserNotFound {
		return nil, err
	}

	newUser := &user.User{
		PhoneNumber: phoneNumber,
		Name:        sql.NullString{String: "New Member", Valid: true},
		UserType:    user.TypeRegular,
		IsActive:    true,
	}
	if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
		// Concurrent registration loses the race; re-read the winner.
		if createErr == idb.ErrDuplicatePhoneNumber {
			return s.userRepo.GetByPhoneNumber(ctx, phoneNumber)
		}
		return nil, createErr
	}
	s.logger.WithField("user_id", newUser.ID).Info("Registered new community member")
	return newUser, nil
}

// BuildReply maps normalized message text to a menu command in either its
// Arabic or English spelling, falls back to the FAQ engine, and finally to a
// generic acknowledgment.
func (s *InboundService) BuildReply(ctx context.Context, userID int64, text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "مساعدة", "help":
		return s.helpMenu()
	case "دورات", "courses":
		return s.coursesMenu(ctx)
	case "جدول", "schedule":
		return s.scheduleMenu(ctx)
	case "دعم", "support":
		return s.supportMenu()
	}

	faqReply := s.faq.HandleIncomingQuestion(ctx, userID, text)
	if faqReply.Type == "answer" {
		return faqReply.Content
	}

	return "شكراً لرسالتك! 👋\n\nللحصول على قائمة الأوامر المتاحة، اكتب \"مساعدة\" 📋"
}

func (s *InboundService) helpMenu() string {
	return `📋 *قائمة الأوامر المتاحة*

1️⃣ *دورات* - عرض الدورات المتاحة
2️⃣ *جدول* - عرض جدول الفعاليات
3️⃣ *دعم* - التواصل مع فريق الدعم
4️⃣ *مساعدة* - عرض هذه القائمة

💡 *يمكنك أيضاً:*
• طرح أي سؤال والإجابة عليه تلقائياً
• الحصول على تذكيرات الدورات

نحن هنا لمساعدتك! 🚀`
}

func (s *InboundService) coursesMenu(ctx context.Context) string {
	courses, err := s.courseRepo.ListPublishedUpcoming(ctx, s.now(), coursesMenuLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list courses for menu")
		return "عذراً، حدث خطأ في جلب الدورات."
	}
	if len(courses) == 0 {
		return "📚 لا توجد دورات متاحة حالياً.\n\nتابعنا للحصول على آخر الدورات! 🔔"
	}

	var b strings.Builder
	b.WriteString("📚 *الدورات المتاحة*\n\n")
	for i, c := range courses {
		instructor := "مدرب متخصص"
		if c.Instructor.Valid && c.Instructor.String != "" {
			instructor = c.Instructor.String
		}
		b.WriteString(fmt.Sprintf("%d. *%s*\n   📅 %s\n   👨‍🏫 %s\n\n",
			i+1, c.Title, c.ScheduleDate.Format("2 Jan 15:04"), instructor))
	}
	b.WriteString("للتسجيل في أي دورة، اكتب رقم الدورة 🎓")
	return b.String()
}

func (s *InboundService) scheduleMenu(ctx context.Context) string {
	courses, err := s.courseRepo.ListPublishedUpcoming(ctx, s.now(), scheduleMenuLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list schedule for menu")
		return "عذراً، حدث خطأ في جلب الجدول."
	}
	if len(courses) == 0 {
		return "📅 لا توجد فعاليات قادمة حالياً."
	}

	var b strings.Builder
	b.WriteString("📅 *جدول الفعاليات القادمة*\n\n")
	for _, c := range courses {
		b.WriteString(fmt.Sprintf("📌 %s\n⏰ %s\n\n",
			c.Title, c.ScheduleDate.Format("Monday, 2 January - 15:04")))
	}
	return b.String()
}

func (s *InboundService) supportMenu() string {
	return fmt.Sprintf(`📞 *فريق الدعم*

للتواصل مع فريق الدعم:

📧 البريد الإلكتروني: %s
📱 الهاتف: %s

⏰ ساعات العمل:
السبت - الخميس: 9:00 صباحاً - 6:00 مساءً
الجمعة: مغلق

نحن هنا لمساعدتك! 💪`, s.support.Email, s.support.Phone)
}
