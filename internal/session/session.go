// Package session issues and verifies the signed login cookie.
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

// CookieName is the name of the login cookie.
const CookieName = "session"

const (
	issuer   = "blogsite"
	audience = "blogsite-web"
)

var (
	// ErrInvalid covers every token that must not authenticate anyone.
	ErrInvalid = errors.New("invalid session")
	// ErrRevoked is returned for a well-formed token that was logged out.
	ErrRevoked = errors.New("session revoked")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    uint
	ID        string
	ExpiresAt time.Time
}

// Manager signs session tokens with an HMAC key.
type Manager struct {
	secret      []byte
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

// NewManager returns a Manager. revocations may be nil, in which case logout
// only clears the cookie.
func NewManager(secret string, ttl time.Duration, revocations RevocationStore) *Manager {
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue signs a new token for userID.
func (m *Manager) Issue(userID uint) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("session secret not configured")
	}

	now := m.now()
	claims := &Claims{
		UserID:    userID,
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		ID:        claims.ID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature, algorithm, issuer, audience and lifetime, then
// checks the revocation store.
func (m *Manager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.verify(tokenString)
	if err != nil {
		return nil, err
	}
	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke records the token as logged out for the rest of its lifetime.
// Invalid tokens and a missing store are not errors.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	if m.revocations == nil || tokenString == "" {
		return nil
	}
	claims, err := m.verify(tokenString)
	if err != nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, claims.ID, remaining)
}

func (m *Manager) verify(tokenString string) (*Claims, error) {
	if tokenString == "" || len(m.secret) == 0 {
		return nil, ErrInvalid
	}

	var rc jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &rc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	userID, err := strconv.ParseUint(rc.Subject, 10, 32)
	if err != nil || userID == 0 || rc.ID == "" {
		return nil, ErrInvalid
	}
	return &Claims{
		UserID:    uint(userID),
		ID:        rc.ID,
		ExpiresAt: rc.ExpiresAt.Time,
	}, nil
}
