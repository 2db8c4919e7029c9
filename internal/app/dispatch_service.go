package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"community_whatsapp_bot/internal/domain/content"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"

	"github.com/sirupsen/logrus"
)

const (
	// pendingBatchLimit bounds how many due items one tick picks up.
	pendingBatchLimit = 10
	// segmentFallbackLimit bounds the minimal-case segment audience.
	segmentFallbackLimit = 100

	finalizeTimeout = 15 * time.Second
)

// DispatchSummary is the aggregate outcome of dispatching one scheduled item.
type DispatchSummary struct {
	Recipients int
	Sent       int
	Failed     int
	Status     content.Status
}

// BulkSendResult is the per-recipient outcome of a bulk send.
type BulkSendResult struct {
	PhoneNumber string `json:"phone_number"`
	Success     bool   `json:"success"`
	MessageID   string `json:"message_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DispatchService resolves audience specifiers into recipient lists and
// delivers scheduled content with pacing and partial-failure accounting.
type DispatchService struct {
	userRepo    user.Repository
	contentRepo content.Repository
	client      whatsapp.Client
	pacer       Pacer
	logger      *logrus.Entry
	now         func() time.Time
}

func NewDispatchService(
	ur user.Repository,
	cr content.Repository,
	client whatsapp.Client,
	pacer Pacer,
	logger *logrus.Entry,
) *DispatchService {
	return &DispatchService{
		userRepo:    ur,
		contentRepo: cr,
		client:      client,
		pacer:       pacer,
		logger:      logger.WithField("component", "dispatch_service"),
		now:         time.Now,
	}
}

// ResolveRecipients maps a target-audience specifier to a duplicate-free
// list of destination phone numbers. "all" and "vip" address the matching
// active users, "segment:<id>" delegates to segment resolution, and any
// other literal is treated as a single destination.
func (s *DispatchService) ResolveRecipients(ctx context.Context, targetAudience string) ([]string, error) {
	switch {
	case targetAudience == "all":
		users, err := s.userRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audience %q: %w", targetAudience, err)
		}
		return dedupePhones(users), nil

	case targetAudience == "vip":
		users, err := s.userRepo.ListActiveByType(ctx, user.TypeVIP)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audience %q: %w", targetAudience, err)
		}
		return dedupePhones(users), nil

	case strings.HasPrefix(targetAudience, "segment:"):
		segmentID := strings.TrimPrefix(targetAudience, "segment:")
		return s.segmentRecipients(ctx, segmentID)

	default:
		// A literal destination address: direct send, not a broadcast.
		return []string{targetAudience}, nil
	}
}

// segmentRecipients is the minimal segment resolution: a bounded subset of
// active users. A real segmentation backend would plug in here.
func (s *DispatchService) segmentRecipients(ctx context.Context, segmentID string) ([]string, error) {
	s.logger.WithField("segment_id", segmentID).Debug("Resolving segment with bounded active-user fallback")
	users, err := s.userRepo.ListActiveLimited(ctx, segmentFallbackLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve segment %q: %w", segmentID, err)
	}
	return dedupePhones(users), nil
}

func dedupePhones(users []*user.User) []string {
	seen := make(map[string]struct{}, len(users))
	phones := make([]string, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.PhoneNumber]; ok {
			continue
		}
		seen[u.PhoneNumber] = struct{}{}
		phones = append(phones, u.PhoneNumber)
	}
	return phones
}

// Dispatch delivers one scheduled item to every resolved recipient,
// sequentially and paced. A single recipient's failure never aborts the
// batch; completing the loop marks the item sent with its tallies, while a
// failure before the loop marks it failed with no counts. Both outcomes are
// terminal. Context cancellation finishes the current recipient, then drains
// and persists what was completed.
func (s *DispatchService) Dispatch(ctx context.Context, item *content.Item) (*DispatchSummary, error) {
	logCtx := s.logger.WithField("content_id", item.ID)

	recipients, err := s.ResolveRecipients(ctx, item.TargetAudience)
	if err != nil {
		logCtx.WithError(err).Error("Recipient resolution failed; marking content failed")
		s.finalizeFailed(item.ID)
		return &DispatchSummary{Status: content.StatusFailed}, err
	}

	summary := &DispatchSummary{Recipients: len(recipients)}
	for i, phone := range recipients {
		if ctx.Err() != nil {
			logCtx.WithField("remaining", len(recipients)-i).Warn("Dispatch canceled; draining remaining recipients")
			break
		}

		if err := s.sendOne(ctx, phone, item); err != nil {
			summary.Failed++
			logCtx.WithError(err).WithField("phone_number", phone).Error("Failed to send to recipient")
		} else {
			summary.Sent++
		}

		// The pacing delay applies between consecutive sends and is not
		// skipped on failure.
		if i < len(recipients)-1 {
			s.pacer.Wait(ctx)
		}
	}

	summary.Status = content.StatusSent
	s.finalizeSent(item.ID, summary.Sent, summary.Failed)
	logCtx.WithFields(logrus.Fields{
		"recipients": summary.Recipients,
		"sent":       summary.Sent,
		"failed":     summary.Failed,
	}).Info("Scheduled content dispatched")
	return summary, nil
}

func (s *DispatchService) sendOne(ctx context.Context, phone string, item *content.Item) error {
	if item.MediaURL.Valid {
		_, err := s.client.SendMedia(ctx, phone, item.MediaURL.String, item.Content)
		return err
	}
	_, err := s.client.SendText(ctx, phone, item.Content)
	return err
}

// finalizeSent persists the terminal status on a fresh context so a
// canceled dispatch still records the counts it completed.
func (s *DispatchService) finalizeSent(id int64, sent, failed int) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	if err := s.contentRepo.MarkSent(ctx, id, sent, failed); err != nil {
		s.logger.WithError(err).WithField("content_id", id).Error("Failed to persist dispatch outcome")
	}
}

func (s *DispatchService) finalizeFailed(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	if err := s.contentRepo.MarkFailed(ctx, id); err != nil {
		s.logger.WithError(err).WithField("content_id", id).Error("Failed to mark content failed")
	}
}

// ProcessPendingContent dispatches every due pending item, oldest first.
// Invoked by the scheduler every minute.
func (s *DispatchService) ProcessPendingContent(ctx context.Context) error {
	items, err := s.contentRepo.ListDuePending(ctx, s.now(), pendingBatchLimit)
	if err != nil {
		return fmt.Errorf("failed to list due pending content: %w", err)
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Per-item failures are already accounted for inside Dispatch.
		if _, err := s.Dispatch(ctx, item); err != nil {
			s.logger.WithError(err).WithField("content_id", item.ID).Error("Dispatch failed for pending item")
		}
	}
	return nil
}

// ScheduleContentInput carries the fields for a new scheduled item.
type ScheduleContentInput struct {
	ContentType    content.Type
	Content        string
	MediaURL       string
	TargetAudience string
	ScheduleTime   time.Time
}

// ScheduleContent queues a new pending item for future dispatch.
func (s *DispatchService) ScheduleContent(ctx context.Context, input ScheduleContentInput) (*content.Item, error) {
	item := &content.Item{
		ContentType:    input.ContentType,
		Content:        input.Content,
		TargetAudience: input.TargetAudience,
		ScheduleTime:   input.ScheduleTime,
	}
	if input.MediaURL != "" {
		item.MediaURL.String = input.MediaURL
		item.MediaURL.Valid = true
	}
	if err := s.contentRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to schedule content: %w", err)
	}

	s.logger.WithField("content_id", item.ID).Info("Content scheduled")
	return item, nil
}

// SendBulk delivers one message to an explicit list of destinations with the
// standard pacing, returning per-recipient results. Callers should treat it
// as long-running: total latency scales linearly with the recipient count.
func (s *DispatchService) SendBulk(ctx context.Context, phoneNumbers []string, body string) []BulkSendResult {
	results := make([]BulkSendResult, 0, len(phoneNumbers))
	for i, phone := range phoneNumbers {
		if ctx.Err() != nil {
			break
		}

		res, err := s.client.SendText(ctx, phone, body)
		if err != nil {
			s.logger.WithError(err).WithField("phone_number", phone).Error("Bulk send failed for recipient")
			results = append(results, BulkSendResult{PhoneNumber: phone, Error: err.Error()})
		} else {
			results = append(results, BulkSendResult{PhoneNumber: phone, Success: true, MessageID: res.MessageID})
		}

		if i < len(phoneNumbers)-1 {
			s.pacer.Wait(ctx)
		}
	}
	return results
}
