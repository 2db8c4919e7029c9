package user

import (
	"database/sql"
	"time"
)

// Type classifies a community member for audience targeting.
type Type string

const (
	TypeRegular Type = "regular"
	TypeVIP     Type = "vip"
	TypeAdmin   Type = "admin"
)

// IsValid reports whether t is one of the known user types.
func (t Type) IsValid() bool {
	switch t {
	case TypeRegular, TypeVIP, TypeAdmin:
		return true
	}
	return false
}

// User represents a community member reachable over WhatsApp.
type User struct {
	ID              int64
	PhoneNumber     string
	Name            sql.NullString // Optional; unknown senders register without a name
	UserType        Type
	IsActive        bool
	EngagementScore int
	JoinedAt        time.Time
	LastActive      sql.NullTime
}
