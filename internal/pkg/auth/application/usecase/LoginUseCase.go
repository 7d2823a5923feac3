package usecase

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	authport "go-courier/internal/pkg/auth/port"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	"go-courier/pkg/apperrors"
)

// LoginInput carries a credential check.
type LoginInput struct {
	Username string
	Password string
}

// LoginUseCase verifies a password and issues a token. Unknown usernames and
// wrong passwords produce the same error so the endpoint does not leak which
// accounts exist.
type LoginUseCase struct {
	Repo   repository.ChatRepository
	Issuer authport.Issuer
}

func NewLoginUseCase(repo repository.ChatRepository, issuer authport.Issuer) *LoginUseCase {
	return &LoginUseCase{Repo: repo, Issuer: issuer}
}

func (uc *LoginUseCase) Execute(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, apperrors.InvalidArg("username and password are required")
	}

	u, err := uc.Repo.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := uc.Issuer.Issue(authport.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		return nil, apperrors.Internal("failed to issue token")
	}
	return &AuthResult{User: u, Token: token}, nil
}
