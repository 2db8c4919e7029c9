package course

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Course entities.
type Repository interface {
	Create(ctx context.Context, c *Course) error
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context, limit int) ([]*Course, error)
	// ListPublishedUpcoming returns published courses with a schedule date at
	// or after now, soonest first.
	ListPublishedUpcoming(ctx context.Context, now time.Time, limit int) ([]*Course, error)
	// ListPublishedBetween returns published courses scheduled inside [from, to].
	ListPublishedBetween(ctx context.Context, from, to time.Time) ([]*Course, error)
}
