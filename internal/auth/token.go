// Package auth issues and verifies the signed session tokens carried in
// the Authorization header.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"taskguardian/internal/policy"
)

var ErrInvalidToken = errors.New("invalid session token")

// Session is the identity decoded from a valid token.
type Session struct {
	UserID int
	Role   policy.Role
}

// TokenManager signs and parses HS256 session tokens with a fixed TTL.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(userID int, role policy.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// Parse verifies signature and expiry and returns the embedded identity.
// An optional "Bearer " prefix is stripped first.
func (m *TokenManager) Parse(raw string) (Session, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	return Session{UserID: int(userID), Role: policy.Role(role)}, nil
}
