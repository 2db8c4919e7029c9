package course

import (
	"database/sql"
	"time"
)

// Status tracks a course through its publication lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is one of the known course statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// Course represents a scheduled training course. Published courses inside the
// lookahead window are the source of reminder broadcasts.
type Course struct {
	ID           int64
	Title        string
	Description  sql.NullString
	Instructor   sql.NullString
	ScheduleDate time.Time
	Status       Status
	CreatedAt    time.Time
}
