package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"community_whatsapp_bot/internal/domain/content"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDispatchService() (*DispatchService, *MockUserRepository, *MockContentRepository, *MockWhatsAppClient, *countingPacer) {
	userRepo := new(MockUserRepository)
	contentRepo := new(MockContentRepository)
	client := new(MockWhatsAppClient)
	pacer := &countingPacer{}
	s := NewDispatchService(userRepo, contentRepo, client, pacer, testLogger())
	return s, userRepo, contentRepo, client, pacer
}

func activeUsers(phones ...string) []*user.User {
	users := make([]*user.User, 0, len(phones))
	for i, p := range phones {
		users = append(users, &user.User{ID: int64(i + 1), PhoneNumber: p, IsActive: true})
	}
	return users
}

func TestResolveRecipients_AllDeduplicates(t *testing.T) {
	s, userRepo, _, _, _ := newTestDispatchService()
	users := activeUsers("+111", "+222", "+111", "+333")
	userRepo.On("ListActive", mock.Anything).Return(users, nil)

	phones, err := s.ResolveRecipients(context.Background(), "all")

	require.NoError(t, err)
	assert.Equal(t, []string{"+111", "+222", "+333"}, phones)
}

func TestResolveRecipients_VIP(t *testing.T) {
	s, userRepo, _, _, _ := newTestDispatchService()
	userRepo.On("ListActiveByType", mock.Anything, user.TypeVIP).Return(activeUsers("+555"), nil)

	phones, err := s.ResolveRecipients(context.Background(), "vip")

	require.NoError(t, err)
	assert.Equal(t, []string{"+555"}, phones)
}

func TestResolveRecipients_Segment(t *testing.T) {
	s, userRepo, _, _, _ := newTestDispatchService()
	userRepo.On("ListActiveLimited", mock.Anything, segmentFallbackLimit).Return(activeUsers("+111", "+222"), nil)

	phones, err := s.ResolveRecipients(context.Background(), "segment:engaged")

	require.NoError(t, err)
	assert.Equal(t, []string{"+111", "+222"}, phones)
}

func TestResolveRecipients_LiteralPhoneNumber(t *testing.T) {
	s, _, _, _, _ := newTestDispatchService()

	phones, err := s.ResolveRecipients(context.Background(), "+96650112233")

	require.NoError(t, err)
	assert.Equal(t, []string{"+96650112233"}, phones)
}

func TestDispatch_PartialFailureStillCompletes(t *testing.T) {
	s, userRepo, contentRepo, client, pacer := newTestDispatchService()
	userRepo.On("ListActive", mock.Anything).Return(activeUsers("+1", "+2", "+3"), nil)

	client.On("SendText", mock.Anything, "+1", "hello").Return(&whatsapp.SendResult{Success: true, MessageID: "m1"}, nil)
	client.On("SendText", mock.Anything, "+2", "hello").Return(nil, assert.AnError)
	client.On("SendText", mock.Anything, "+3", "hello").Return(&whatsapp.SendResult{Success: true, MessageID: "m3"}, nil)
	contentRepo.On("MarkSent", mock.Anything, int64(9), 2, 1).Return(nil)

	item := &content.Item{ID: 9, Content: "hello", TargetAudience: "all"}
	summary, err := s.Dispatch(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Recipients)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, content.StatusSent, summary.Status)
	// The delay runs between consecutive sends, including after a failure.
	assert.Equal(t, 2, pacer.waits)
	contentRepo.AssertCalled(t, "MarkSent", mock.Anything, int64(9), 2, 1)
}

func TestDispatch_EmptyAudienceIsStillSent(t *testing.T) {
	s, userRepo, contentRepo, _, pacer := newTestDispatchService()
	userRepo.On("ListActiveByType", mock.Anything, user.TypeVIP).Return([]*user.User{}, nil)
	contentRepo.On("MarkSent", mock.Anything, int64(3), 0, 0).Return(nil)

	item := &content.Item{ID: 3, Content: "vip only", TargetAudience: "vip"}
	summary, err := s.Dispatch(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Recipients)
	assert.Equal(t, content.StatusSent, summary.Status)
	assert.Equal(t, 0, pacer.waits)
}

func TestDispatch_ResolutionFailureMarksFailed(t *testing.T) {
	s, userRepo, contentRepo, _, _ := newTestDispatchService()
	userRepo.On("ListActive", mock.Anything).Return(nil, assert.AnError)
	contentRepo.On("MarkFailed", mock.Anything, int64(7)).Return(nil)

	item := &content.Item{ID: 7, Content: "x", TargetAudience: "all"}
	summary, err := s.Dispatch(context.Background(), item)

	assert.Error(t, err)
	assert.Equal(t, content.StatusFailed, summary.Status)
	assert.Equal(t, 0, summary.Sent)
	contentRepo.AssertCalled(t, "MarkFailed", mock.Anything, int64(7))
	contentRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_MediaContentUsesMediaSend(t *testing.T) {
	s, _, contentRepo, client, _ := newTestDispatchService()
	client.On("SendMedia", mock.Anything, "+1", "https://cdn.example.com/a.jpg", "caption").
		Return(&whatsapp.SendResult{Success: true, MessageID: "m1"}, nil)
	contentRepo.On("MarkSent", mock.Anything, int64(4), 1, 0).Return(nil)

	item := &content.Item{
		ID:             4,
		Content:        "caption",
		MediaURL:       sql.NullString{String: "https://cdn.example.com/a.jpg", Valid: true},
		TargetAudience: "+1",
	}
	summary, err := s.Dispatch(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	client.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPendingContent_DispatchesEachDueItem(t *testing.T) {
	s, _, contentRepo, client, _ := newTestDispatchService()
	items := []*content.Item{
		{ID: 1, Content: "a", TargetAudience: "+1"},
		{ID: 2, Content: "b", TargetAudience: "+2"},
	}
	contentRepo.On("ListDuePending", mock.Anything, mock.Anything, pendingBatchLimit).Return(items, nil)
	client.On("SendText", mock.Anything, "+1", "a").Return(&whatsapp.SendResult{Success: true}, nil)
	client.On("SendText", mock.Anything, "+2", "b").Return(&whatsapp.SendResult{Success: true}, nil)
	contentRepo.On("MarkSent", mock.Anything, int64(1), 1, 0).Return(nil)
	contentRepo.On("MarkSent", mock.Anything, int64(2), 1, 0).Return(nil)

	require.NoError(t, s.ProcessPendingContent(context.Background()))
	contentRepo.AssertExpectations(t)
}

func TestScheduleContent(t *testing.T) {
	s, _, contentRepo, _, _ := newTestDispatchService()
	contentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	item, err := s.ScheduleContent(context.Background(), ScheduleContentInput{
		ContentType:    content.TypeAnnouncement,
		Content:        "big news",
		MediaURL:       "https://cdn.example.com/poster.png",
		TargetAudience: "all",
		ScheduleTime:   time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, content.TypeAnnouncement, item.ContentType)
	assert.True(t, item.MediaURL.Valid)
	assert.Equal(t, "https://cdn.example.com/poster.png", item.MediaURL.String)
}

func TestSendBulk_ReturnsPerRecipientResults(t *testing.T) {
	s, _, _, client, pacer := newTestDispatchService()
	client.On("SendText", mock.Anything, "+1", "hi").Return(&whatsapp.SendResult{Success: true, MessageID: "m1"}, nil)
	client.On("SendText", mock.Anything, "+2", "hi").Return(nil, assert.AnError)

	results := s.SendBulk(context.Background(), []string{"+1", "+2"}, "hi")

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "m1", results[0].MessageID)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, 1, pacer.waits)
}
