package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/store"
	"github.com/lungsight/apiserver/types"
)

// ErrUserNotFound is returned when an authenticate call names an unknown
// username.
var ErrUserNotFound = errors.New("username not found")

// ErrInvalidCredentials is returned when the stored hash does not verify
// against the supplied password.
var ErrInvalidCredentials = errors.New("incorrect password")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByUUID(ctx context.Context, uuid string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// AuditTrail records signups to the denormalized append-only log.
type AuditTrail interface {
	Append(user types.User) error
}

// UserService encapsulates signup and login use-cases.
type UserService struct {
	repo  UserRepository
	audit AuditTrail
	log   *logger.Logger
}

func NewUserService(repo UserRepository, audit AuditTrail, log *logger.Logger) *UserService {
	return &UserService{
		repo:  repo,
		audit: audit,
		log:   log.With("service", "UserService"),
	}
}

// Register creates a new account and returns it with a fresh external
// identifier. Fails with store.ErrDuplicateUsername when the username is
// taken; a duplicate never creates a second row.
func (s *UserService) Register(ctx context.Context, fullName, gender string, age int, username, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		FullName:     fullName,
		Gender:       gender,
		Age:          age,
		Username:     username,
		PasswordHash: string(hashed),
		UUID:         uuid.NewString(),
	})
	if err != nil {
		return types.User{}, err
	}

	// Denormalized audit write, not transactional with the insert.
	if err := s.audit.Append(user); err != nil {
		s.log.Error("audit append failed", "username", user.Username, "error", err)
	}

	return user, nil
}

// Authenticate verifies credentials and returns the stored user. Fails with
// ErrUserNotFound for an unknown username and ErrInvalidCredentials when the
// password does not verify.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}
