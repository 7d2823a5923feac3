package usecase

import (
	"context"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	authport "go-courier/internal/pkg/auth/port"
	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Password string
}

// AuthResult pairs the stored user with a freshly issued token.
type AuthResult struct {
	User  *chat.User
	Token string
}

// RegisterUseCase creates an account and issues its first token.
type RegisterUseCase struct {
	Repo   repository.ChatRepository
	Issuer authport.Issuer
}

func NewRegisterUseCase(repo repository.ChatRepository, issuer authport.Issuer) *RegisterUseCase {
	return &RegisterUseCase{Repo: repo, Issuer: issuer}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !usernamePattern.MatchString(in.Username) {
		return nil, apperrors.InvalidArg("username must be 3-32 chars, lowercase letters, numbers and underscores only")
	}
	if len(in.Password) < 6 {
		return nil, apperrors.InvalidArg("password must be at least 6 characters")
	}

	if _, err := uc.Repo.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password")
	}

	u := chat.User{Username: in.Username, PasswordHash: string(hash), CreatedAt: time.Now().UTC()}
	id, err := uc.Repo.CreateUser(ctx, u)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	u.ID = id

	token, err := uc.Issuer.Issue(authport.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		return nil, apperrors.Internal("failed to issue token")
	}
	return &AuthResult{User: &u, Token: token}, nil
}
