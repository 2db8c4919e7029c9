package message

import (
	"context"
	"time"
)

// Repository defines the operations for the message log and interaction telemetry.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	// UpdateStatusByGatewayID applies a delivery-status callback to the
	// matching outgoing message.
	UpdateStatusByGatewayID(ctx context.Context, gatewayID, status string) error
	// DeleteOlderThan removes messages sent before cutoff and reports how
	// many rows were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	LogInteraction(ctx context.Context, i *Interaction) error
	// HasReminder reports whether the user already received a reminder for
	// the given course.
	HasReminder(ctx context.Context, userID, courseID int64) (bool, error)
}
