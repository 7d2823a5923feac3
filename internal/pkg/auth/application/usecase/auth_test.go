package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authport "go-courier/internal/pkg/auth/port"
	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
)

// stubRepo implements only the user lookups the auth flows touch; the
// embedded interface panics loudly if anything else is called.
type stubRepo struct {
	repository.ChatRepository
	users map[string]*chat.User
	seq   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*chat.User)}
}

func (s *stubRepo) CreateUser(ctx context.Context, u chat.User) (string, error) {
	s.seq++
	u.ID = "user-" + strconv.Itoa(s.seq)
	s.users[u.Username] = &u
	return u.ID, nil
}

func (s *stubRepo) GetUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	if u, ok := s.users[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type stubIssuer struct{}

func (stubIssuer) Issue(id authport.Identity) (string, error) {
	return "token-for-" + id.UserID, nil
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newStubRepo()
	reg := NewRegisterUseCase(repo, stubIssuer{})
	login := NewLoginUseCase(repo, stubIssuer{})
	ctx := context.Background()

	res, err := reg.Execute(ctx, RegisterInput{Username: "alice", Password: "sekret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "sekret1", res.User.PasswordHash, "password must be stored hashed")

	got, err := login.Execute(ctx, LoginInput{Username: "alice", Password: "sekret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, got.User.ID)

	_, err = login.Execute(ctx, LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = login.Execute(ctx, LoginInput{Username: "ghost", Password: "sekret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials,
		"unknown user and wrong password must be indistinguishable")
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegisterUseCase(newStubRepo(), stubIssuer{})
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "sekret1"},
		{"uppercase username", "Alice", "sekret1"},
		{"short password", "alice", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Execute(ctx, RegisterInput{Username: tc.username, Password: tc.password})
			assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newStubRepo()
	repo.users["alice"] = &chat.User{ID: "user-0", Username: "alice", CreatedAt: time.Now()}

	_, err := NewRegisterUseCase(repo, stubIssuer{}).Execute(context.Background(), RegisterInput{Username: "alice", Password: "sekret1"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
}
