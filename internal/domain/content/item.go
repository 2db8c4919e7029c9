package content

import (
	"database/sql"
	"time"
)

// Type classifies a piece of scheduled content.
type Type string

const (
	TypeAnnouncement Type = "announcement"
	TypeReminder     Type = "reminder"
	TypeOther        Type = "other"
)

// IsValid reports whether t is one of the known content types.
func (t Type) IsValid() bool {
	switch t {
	case TypeAnnouncement, TypeReminder, TypeOther:
		return true
	}
	return false
}

// Status tracks a scheduled item through dispatch. Transitions are
// one-directional: pending -> sent or pending -> failed, both terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Item is a piece of content queued for future broadcast to a resolved
// audience. TargetAudience is either "all", "vip", "segment:<id>" or a
// single phone number.
type Item struct {
	ID             int64
	ContentType    Type
	Content        string
	MediaURL       sql.NullString
	TargetAudience string
	ScheduleTime   time.Time
	Status         Status
	SentCount      int
	FailedCount    int
	CreatedAt      time.Time
}
