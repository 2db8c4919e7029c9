package app

import (
	"context"
	"io"
	"time"

	"community_whatsapp_bot/internal/domain/analytics"
	"community_whatsapp_bot/internal/domain/content"
	"community_whatsapp_bot/internal/domain/course"
	"community_whatsapp_bot/internal/domain/faq"
	"community_whatsapp_bot/internal/domain/message"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*user.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit int) ([]*user.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) ListActiveByType(ctx context.Context, t user.Type) ([]*user.User, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) ListActiveLimited(ctx context.Context, limit int) ([]*user.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastActive(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFAQRepository is a mock implementation of faq.Repository
type MockFAQRepository struct {
	mock.Mock
}

func (m *MockFAQRepository) Create(ctx context.Context, e *faq.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockFAQRepository) Update(ctx context.Context, e *faq.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockFAQRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFAQRepository) GetByID(ctx context.Context, id int64) (*faq.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*faq.Entry), args.Error(1)
}

func (m *MockFAQRepository) ListAll(ctx context.Context, category string) ([]*faq.Entry, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*faq.Entry), args.Error(1)
}

func (m *MockFAQRepository) Search(ctx context.Context, term string) ([]*faq.Entry, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*faq.Entry), args.Error(1)
}

func (m *MockFAQRepository) IncrementUsage(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFAQRepository) Stats(ctx context.Context) (*faq.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*faq.Stats), args.Error(1)
}

func (m *MockFAQRepository) TopByUsage(ctx context.Context, limit int) ([]*faq.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*faq.Entry), args.Error(1)
}

// MockCourseRepository is a mock implementation of course.Repository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, c *course.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourseRepository) Update(ctx context.Context, c *course.Course) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id int64) (*course.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*course.Course), args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context, limit int) ([]*course.Course, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*course.Course), args.Error(1)
}

func (m *MockCourseRepository) ListPublishedUpcoming(ctx context.Context, now time.Time, limit int) ([]*course.Course, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*course.Course), args.Error(1)
}

func (m *MockCourseRepository) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*course.Course, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*course.Course), args.Error(1)
}

// MockContentRepository is a mock implementation of content.Repository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, item *content.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, id int64) (*content.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Item), args.Error(1)
}

func (m *MockContentRepository) List(ctx context.Context, limit int) ([]*content.Item, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*content.Item), args.Error(1)
}

func (m *MockContentRepository) ListDuePending(ctx context.Context, now time.Time, limit int) ([]*content.Item, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*content.Item), args.Error(1)
}

func (m *MockContentRepository) MarkSent(ctx context.Context, id int64, sentCount, failedCount int) error {
	args := m.Called(ctx, id, sentCount, failedCount)
	return args.Error(0)
}

func (m *MockContentRepository) MarkFailed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of message.Repository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *message.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) UpdateStatusByGatewayID(ctx context.Context, gatewayID, status string) error {
	args := m.Called(ctx, gatewayID, status)
	return args.Error(0)
}

func (m *MockMessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) LogInteraction(ctx context.Context, i *message.Interaction) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockMessageRepository) HasReminder(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of analytics.Repository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Upsert(ctx context.Context, s *analytics.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) UserStatsOn(ctx context.Context, date time.Time) (*analytics.UserStats, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.UserStats), args.Error(1)
}

func (m *MockAnalyticsRepository) MessageStatsOn(ctx context.Context, date time.Time) (*analytics.MessageStats, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.MessageStats), args.Error(1)
}

func (m *MockAnalyticsRepository) Recent(ctx context.Context, days int) ([]*analytics.Snapshot, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analytics.Snapshot), args.Error(1)
}

// MockWhatsAppClient is a mock implementation of whatsapp.Client
type MockWhatsAppClient struct {
	mock.Mock
}

func (m *MockWhatsAppClient) SendText(ctx context.Context, phoneNumber, body string) (*whatsapp.SendResult, error) {
	args := m.Called(ctx, phoneNumber, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*whatsapp.SendResult), args.Error(1)
}

func (m *MockWhatsAppClient) SendMedia(ctx context.Context, phoneNumber, mediaURL, caption string) (*whatsapp.SendResult, error) {
	args := m.Called(ctx, phoneNumber, mediaURL, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*whatsapp.SendResult), args.Error(1)
}

// countingPacer records how many times Wait was called without sleeping.
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) { p.waits++ }

// syncBackground makes fire-and-forget telemetry run inline so tests can
// assert on it deterministically.
func syncBackground(fn func()) { fn() }
