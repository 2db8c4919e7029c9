package user

import (
	"context"
)

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]*User, error) // Newest first, for admin purposes
	ListActive(ctx context.Context) ([]*User, error)
	ListActiveByType(ctx context.Context, t Type) ([]*User, error)
	ListActiveLimited(ctx context.Context, limit int) ([]*User, error)
	TouchLastActive(ctx context.Context, id int64) error
}
