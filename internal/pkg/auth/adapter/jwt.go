package adapter

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-courier/config"
	"go-courier/internal/pkg/auth/port"
	"go-courier/pkg/apperrors"
)

// JWTManager signs and verifies HS256 tokens carrying the user id in the
// subject claim and the username alongside.
type JWTManager struct {
	secret    []byte
	expiresIn time.Duration
}

func NewJWTManager(cfg config.JWT) *JWTManager {
	return &JWTManager{
		secret:    []byte(cfg.Secret),
		expiresIn: time.Duration(cfg.ExpiresIn) * time.Hour,
	}
}

var (
	_ port.Verifier = (*JWTManager)(nil)
	_ port.Issuer   = (*JWTManager)(nil)
)

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (m *JWTManager) Issue(id port.Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *JWTManager) Verify(tokenString string) (*port.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || c.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return &port.Identity{UserID: c.Subject, Username: c.Username}, nil
}
