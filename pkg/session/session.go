// Package session issues and verifies signed login sessions. A session is an
// HS256 JWT naming the user (sub) and a random session id (jti). Logging out
// records the jti in a RevocationStore until the token would have expired.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session has been revoked")
)

// Session is the verified content of a token.
type Session struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	store  RevocationStore
}

func NewManager(secret string, ttl time.Duration, store RevocationStore) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, store: store}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a fresh session for the user.
func (m *Manager) Issue(userID uint) (string, *Session, error) {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return signed, s, nil
}

// Parse verifies signature, expiry and revocation.
func (m *Manager) Parse(ctx context.Context, raw string) (*Session, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := m.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	return &Session{ID: claims.ID, UserID: uint(uid), ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke invalidates the session for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return nil
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.store.Revoke(ctx, s.ID, ttl)
}
