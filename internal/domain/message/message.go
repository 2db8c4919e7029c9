package message

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Direction distinguishes messages received from users and messages sent to them.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Message is one logged WhatsApp message, incoming or outgoing.
type Message struct {
	ID        int64
	UserID    int64
	Direction Direction
	Content   string
	MediaURL  sql.NullString
	Status    string
	GatewayID sql.NullString // Message id reported by the dispatch gateway
	SentAt    time.Time
}

// Interaction is a telemetry record of one user-facing event, such as an
// answered FAQ query or a delivered course reminder.
type Interaction struct {
	ID        int64
	UserID    int64
	Type      string
	Data      json.RawMessage
	CreatedAt time.Time
}

// Interaction types written by the engines.
const (
	InteractionFAQQuery     = "faq_query"
	InteractionReminderSent = "reminder_sent"
)
