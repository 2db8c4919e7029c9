package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"community_whatsapp_bot/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrDuplicatePhoneNumber = fmt.Errorf("user with this phone number already exists")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, phone_number, name, user_type, is_active, engagement_score, joined_at, last_active`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.Name, &u.UserType, &u.IsActive, &u.EngagementScore, &u.JoinedAt, &u.LastActive)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (phone_number, name, user_type, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, joined_at`

	if u.UserType == "" {
		u.UserType = user.TypeRegular
	}

	err := r.db.QueryRowContext(ctx, query, u.PhoneNumber, u.Name, u.UserType, u.IsActive).Scan(&u.ID, &u.JoinedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "users_phone_number_key") {
			return ErrDuplicatePhoneNumber
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, phoneNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by phone number: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u *user.User) error {
	query := `UPDATE users
               SET phone_number = $1, name = $2, user_type = $3, is_active = $4, engagement_score = $5
               WHERE id = $6
               RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, u.PhoneNumber, u.Name, u.UserType, u.IsActive, u.EngagementScore, u.ID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "users_phone_number_key") {
			return ErrDuplicatePhoneNumber
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted user rows: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) List(ctx context.Context, limit int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY joined_at DESC LIMIT $1`
	return r.queryUsers(ctx, "error listing users", query, limit)
}

func (r *PostgresUserRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE ORDER BY id`
	return r.queryUsers(ctx, "error listing active users", query)
}

func (r *PostgresUserRepository) ListActiveByType(ctx context.Context, t user.Type) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE AND user_type = $1 ORDER BY id`
	return r.queryUsers(ctx, "error listing active users by type", query, t)
}

func (r *PostgresUserRepository) ListActiveLimited(ctx context.Context, limit int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE ORDER BY id LIMIT $1`
	return r.queryUsers(ctx, "error listing limited active users", query, limit)
}

func (r *PostgresUserRepository) TouchLastActive(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_active = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error updating user last_active: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) queryUsers(ctx context.Context, errPrefix, query string, args ...any) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", errPrefix, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", errPrefix, err)
	}
	return users, nil
}
