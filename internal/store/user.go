package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lungsight/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, full_name, gender, age, username, password_hash, user_uuid, created_at
		FROM users
		WHERE username = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.FullName,
		&user.Gender,
		&user.Age,
		&user.Username,
		&user.PasswordHash,
		&user.UUID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByUUID(ctx context.Context, uuid string) (types.User, error) {
	const query = `
		SELECT id, full_name, gender, age, username, password_hash, user_uuid, created_at
		FROM users
		WHERE user_uuid = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(
		&user.ID,
		&user.FullName,
		&user.Gender,
		&user.Age,
		&user.Username,
		&user.PasswordHash,
		&user.UUID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now()

	const query = `
		INSERT INTO users (full_name, gender, age, username, password_hash, user_uuid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.FullName,
		user.Gender,
		user.Age,
		user.Username,
		user.PasswordHash,
		user.UUID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicateUsername
		}
		return types.User{}, err
	}
	if id, err := result.LastInsertId(); err == nil {
		user.ID = int(id)
	}
	return user, nil
}

// isUniqueViolation recognizes the unique-constraint error of both supported
// drivers (sqlite reports "UNIQUE constraint failed", lib/pq "duplicate key").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
