package faq

import "context"

// Repository defines the operations for persisting and retrieving FAQ entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// ListAll returns every entry ordered by usage count descending.
	// An empty category returns all categories.
	ListAll(ctx context.Context, category string) ([]*Entry, error)
	Search(ctx context.Context, term string) ([]*Entry, error)
	// IncrementUsage bumps usage_count atomically in place.
	IncrementUsage(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*Stats, error)
	TopByUsage(ctx context.Context, limit int) ([]*Entry, error)
}
