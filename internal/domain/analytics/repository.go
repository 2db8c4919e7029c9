package analytics

import (
	"context"
	"time"
)

// UserStats are the per-day user counters feeding a Snapshot.
type UserStats struct {
	Total  int
	Active int
	New    int // Users who joined on the stats date
}

// MessageStats are the per-day message counters feeding a Snapshot.
type MessageStats struct {
	Sent     int
	Received int
}

// Repository defines the operations for the daily analytics rollup.
type Repository interface {
	// Upsert inserts the snapshot for its date, replacing any existing row.
	Upsert(ctx context.Context, s *Snapshot) error
	UserStatsOn(ctx context.Context, date time.Time) (*UserStats, error)
	MessageStatsOn(ctx context.Context, date time.Time) (*MessageStats, error)
	// Recent returns the latest snapshots, newest first.
	Recent(ctx context.Context, days int) ([]*Snapshot, error)
}
