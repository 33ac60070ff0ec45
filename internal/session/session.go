// Package session keeps the backend access token of a logged-in seller on
// the server side. The browser only holds a signed session id.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Session implements sellerapi.Session.
type Session struct {
	ID        string
	Token     string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// New builds a session for token. The session never outlives the token's
// exp claim, and never lives longer than maxTTL.
func New(token, username string, now time.Time, maxTTL time.Duration) *Session {
	exp := now.Add(maxTTL)
	if te, ok := TokenExpiry(token); ok && te.Before(exp) {
		exp = te
	}
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Username:  username,
		ExpiresAt: exp,
		CreatedAt: now,
	}
}

// TokenExpiry reads the exp claim without verifying the signature. The
// backend is the one that verifies; this only bounds the cookie lifetime.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenUsername returns the username claim, if present.
func TokenUsername(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	u, _ := claims["username"].(string)
	return u
}

type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown and expired sessions.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that can drop expired sessions in bulk.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
