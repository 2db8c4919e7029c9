package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"community_whatsapp_bot/internal/domain/message"
	"community_whatsapp_bot/internal/domain/user"
	"community_whatsapp_bot/internal/domain/whatsapp"
	idb "community_whatsapp_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotReady is returned when a send is attempted before Initialize.
var ErrNotReady = fmt.Errorf("whatsapp gateway is not ready")

// PlaceholderClient implements the whatsapp.Client interface without a real
// wire protocol: every send is logged and recorded in the message log. Swap
// it for a Cloud API adapter when a production transport is wired in.
type PlaceholderClient struct {
	userRepo user.Repository
	msgRepo  message.Repository
	logger   *logrus.Entry
	ready    atomic.Bool
}

func NewPlaceholderClient(ur user.Repository, mr message.Repository, logger *logrus.Entry) *PlaceholderClient {
	return &PlaceholderClient{
		userRepo: ur,
		msgRepo:  mr,
		logger:   logger.WithField("component", "whatsapp_gateway"),
	}
}

// Initialize marks the gateway ready. A real transport would establish its
// session here.
func (c *PlaceholderClient) Initialize() {
	c.ready.Store(true)
	c.logger.Info("WhatsApp gateway initialized (placeholder transport)")
}

// Ready reports whether the gateway accepts sends.
func (c *PlaceholderClient) Ready() bool {
	return c.ready.Load()
}

func (c *PlaceholderClient) SendText(ctx context.Context, phoneNumber, body string) (*whatsapp.SendResult, error) {
	return c.send(ctx, phoneNumber, body, "")
}

func (c *PlaceholderClient) SendMedia(ctx context.Context, phoneNumber, mediaURL, caption string) (*whatsapp.SendResult, error) {
	if mediaURL == "" {
		return nil, fmt.Errorf("media URL is required")
	}
	return c.send(ctx, phoneNumber, caption, mediaURL)
}

func (c *PlaceholderClient) send(ctx context.Context, phoneNumber, body, mediaURL string) (*whatsapp.SendResult, error) {
	if !c.ready.Load() {
		return nil, ErrNotReady
	}
	if phoneNumber == "" {
		return nil, fmt.Errorf("destination phone number is required")
	}

	messageID := "msg_" + uuid.NewString()
	c.logger.WithFields(logrus.Fields{
		"phone_number": phoneNumber,
		"message_id":   messageID,
		"has_media":    mediaURL != "",
	}).Info("Sending message")

	// Record the outgoing message when the destination maps to a known user.
	// Unknown destinations (e.g. a direct-send audience) are still "sent".
	u, err := c.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if err != idb.ErrUserNotFound {
			c.logger.WithError(err).Warn("Could not resolve destination to a user; skipping message log")
		}
	} else {
		m := &message.Message{
			UserID:    u.ID,
			Direction: message.DirectionOutgoing,
			Content:   body,
			Status:    "sent",
			GatewayID: sql.NullString{String: messageID, Valid: true},
		}
		if mediaURL != "" {
			m.MediaURL = sql.NullString{String: mediaURL, Valid: true}
		}
		if err := c.msgRepo.Create(ctx, m); err != nil {
			c.logger.WithError(err).Warn("Failed to record outgoing message")
		}
	}

	return &whatsapp.SendResult{Success: true, MessageID: messageID}, nil
}
