package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shop/pkg/domain/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type tokenManager struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewTokenManager(secret string, tokenTTL time.Duration) model.TokenManager {
	return &tokenManager{secret: []byte(secret), tokenTTL: tokenTTL}
}

func (m *tokenManager) Issue(subject string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
	})
	return token.SignedString(m.secret)
}

func (m *tokenManager) Decode(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
