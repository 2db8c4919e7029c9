package analytics

import "time"

// Snapshot is one day of rolled-up community metrics.
type Snapshot struct {
	Date             time.Time
	TotalUsers       int
	ActiveUsers      int
	NewUsers         int
	MessagesSent     int
	MessagesReceived int
	EngagementRate   float64
}
