package services

import (
	"context"
	"testing"

	"github.com/lungsight/apiserver/internal/logger"
	"github.com/lungsight/apiserver/internal/store"
	"github.com/lungsight/apiserver/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byUsername map[string]types.User
	nextID     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: make(map[string]types.User)}
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUUID(_ context.Context, uuid string) (types.User, error) {
	for _, user := range r.byUsername {
		if user.UUID == uuid {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, exists := r.byUsername[user.Username]; exists {
		return types.User{}, store.ErrDuplicateUsername
	}
	r.nextID++
	user.ID = r.nextID
	r.byUsername[user.Username] = user
	return user, nil
}

type fakeAudit struct {
	appended []types.User
	err      error
}

func (a *fakeAudit) Append(user types.User) error {
	if a.err != nil {
		return a.err
	}
	a.appended = append(a.appended, user)
	return nil
}

func TestUserServiceRegister(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewUserService(repo, audit, logger.NewNop())

	user, err := svc.Register(context.Background(), "Alice Smith", "F", 34, "alice", "secret")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEmpty(t, user.UUID)

	// The password is stored hashed, never verbatim.
	require.NotEqual(t, "secret", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

	require.Len(t, audit.appended, 1)
	require.Equal(t, "alice", audit.appended[0].Username)
}

func TestUserServiceRegisterDuplicate(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{}
	svc := NewUserService(repo, audit, logger.NewNop())

	_, err := svc.Register(context.Background(), "Alice Smith", "F", 34, "alice", "secret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other Alice", "F", 40, "alice", "other")
	require.ErrorIs(t, err, store.ErrDuplicateUsername)

	// The duplicate must not reach the audit trail.
	require.Len(t, audit.appended, 1)
}

func TestUserServiceRegisterSurvivesAuditFailure(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &fakeAudit{err: context.DeadlineExceeded}
	svc := NewUserService(repo, audit, logger.NewNop())

	user, err := svc.Register(context.Background(), "Alice Smith", "F", 34, "alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, user.UUID)
}

func TestUserServiceAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAudit{}, logger.NewNop())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice Smith", "F", 34, "alice", "secret")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, registered.UUID, user.UUID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret")
	require.ErrorIs(t, err, ErrUserNotFound)
}
