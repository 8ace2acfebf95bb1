// Package auth implements admin authentication: a single configured
// credential pair checked server-side, with bearer-token sessions validated
// on every admin request.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Sentinel errors for authentication.
var (
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound is returned when a token has no live session.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is a live admin session identified by its bearer token.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore persists admin sessions keyed by token.
type SessionStore interface {
	// Get returns the session for the token, or ErrSessionNotFound.
	Get(ctx context.Context, token string) (*Session, error)
	// Put saves the session until its expiry.
	Put(ctx context.Context, s *Session) error
	// Delete revokes the session. Absent sessions are a no-op.
	Delete(ctx context.Context, token string) error
}

// HashPassword computes the HMAC-SHA256 of a password under the given pepper,
// hex-encoded. The configuration carries this hash, never the password.
func HashPassword(password string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// Service validates admin credentials and manages sessions.
type Service struct {
	username     string
	passwordHash []byte // raw HMAC-SHA256 bytes
	pepper       []byte
	sessionTTL   time.Duration
	sessions     SessionStore
}

// NewService creates an auth Service. passwordHash is the hex-encoded
// HMAC-SHA256 of the admin password under pepper, as produced by HashPassword.
func NewService(username, passwordHash string, pepper []byte, sessionTTL time.Duration, sessions SessionStore) (*Service, error) {
	raw, err := hex.DecodeString(passwordHash)
	if err != nil {
		return nil, errors.Wrap(err, "decode admin password hash")
	}
	return &Service{
		username:     username,
		passwordHash: raw,
		pepper:       pepper,
		sessionTTL:   sessionTTL,
		sessions:     sessions,
	}, nil
}

// Login checks the credential pair and, on success, issues a new session.
// The password comparison is constant-time to avoid timing side-channels.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(password))
	computed := mac.Sum(nil)

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare(computed, s.passwordHash) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		Token:     uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, errors.Wrap(err, "save session")
	}
	return session, nil
}

// Validate resolves a bearer token to its session. Expired sessions are
// revoked and reported as not found.
func (s *Service) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Logout revokes the session for the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
