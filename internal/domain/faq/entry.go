package faq

import "time"

// Entry is a stored question/answer record usable for automated matching.
// Keywords, when present, boost matching for queries that mention them.
type Entry struct {
	ID         int64
	Question   string
	Answer     string
	Keywords   []string // Stored as a JSON array in the faq table
	Category   string
	UsageCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Stats aggregates knowledge-base usage for the admin dashboard.
type Stats struct {
	TotalEntries int
	TotalUsage   int
	AverageUsage float64
}
