package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Session
var (
	ErrEmptySessionToken   = fmt.Errorf("%w: session token cannot be empty", ErrValidation)
	ErrEmptySessionUserID  = fmt.Errorf("%w: session user ID cannot be empty", ErrValidation)
	ErrInvalidSessionRange = fmt.Errorf("%w: session must expire after it is issued", ErrValidation)
)

// Session is the server-side record behind a bearer token. The token is an
// opaque capability: whoever presents it acts as UserID until the session
// expires or is revoked. The expiry is fixed at issuance and is never
// extended by activity.
type Session struct {
	Token     string    `json:"-"` // Never expose the capability in JSON
	UserID    uuid.UUID `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// NewSession creates a session for the given user with the supplied opaque
// token, valid for ttl from now. Returns an error if validation fails.
func NewSession(userID uuid.UUID, token string, ttl time.Duration) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Revoked:   false,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
// Returns an error if any field fails validation.
func (s *Session) Validate() error {
	if s.Token == "" {
		return ErrEmptySessionToken
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if !s.ExpiresAt.After(s.IssuedAt) {
		return ErrInvalidSessionRange
	}

	return nil
}

// ExpiredAt reports whether the session is past its expiry at the given
// instant. The boundary is exclusive: a session is still live at exactly
// ExpiresAt and dead one instant after.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ActiveAt reports whether the session resolves at the given instant:
// not revoked and not expired.
func (s *Session) ActiveAt(now time.Time) bool {
	return !s.Revoked && !s.ExpiredAt(now)
}
