package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	token := "2f6d1c8a5e9b40c7a3f1d2e6b8c4a0f92f6d1c8a5e9b40c7a3f1d2e6b8c4a0f9"

	session, err := NewSession(userID, token, 24*time.Hour)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.Token != token {
		t.Errorf("Expected token %s, got %s", token, session.Token)
	}

	if session.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, session.UserID)
	}

	if session.Revoked {
		t.Error("Expected new session to start unrevoked")
	}

	lifetime := session.ExpiresAt.Sub(session.IssuedAt)
	if lifetime != 24*time.Hour {
		t.Errorf("Expected 24h lifetime, got %v", lifetime)
	}

	// Test empty token
	_, err = NewSession(userID, "", 24*time.Hour)
	if !errors.Is(err, ErrEmptySessionToken) {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionToken, err)
	}

	// Test empty user ID
	_, err = NewSession(uuid.Nil, token, 24*time.Hour)
	if !errors.Is(err, ErrEmptySessionUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptySessionUserID, err)
	}

	// Test non-positive lifetime
	_, err = NewSession(userID, token, 0)
	if !errors.Is(err, ErrInvalidSessionRange) {
		t.Errorf("Expected error %v, got %v", ErrInvalidSessionRange, err)
	}
}

func TestSessionExpiryBoundary(t *testing.T) {
	t.Parallel()
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	session := Session{
		Token:     "token",
		UserID:    uuid.New(),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(24 * time.Hour),
	}

	cases := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{"one minute before expiry", issued.Add(23*time.Hour + 59*time.Minute), false},
		{"exactly at expiry", issued.Add(24 * time.Hour), false},
		{"one second past expiry", issued.Add(24*time.Hour + time.Second), true},
	}

	for _, tc := range cases {
		if got := session.ExpiredAt(tc.at); got != tc.expired {
			t.Errorf("%s: ExpiredAt = %v, want %v", tc.name, got, tc.expired)
		}
	}
}

func TestSessionActiveAt(t *testing.T) {
	t.Parallel()
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	session := Session{
		Token:     "token",
		UserID:    uuid.New(),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(24 * time.Hour),
	}

	if !session.ActiveAt(issued.Add(time.Hour)) {
		t.Error("Expected fresh session to be active")
	}

	// Revocation dominates regardless of remaining lifetime.
	revoked := session
	revoked.Revoked = true
	if revoked.ActiveAt(issued.Add(time.Minute)) {
		t.Error("Expected revoked session to be inactive")
	}

	if session.ActiveAt(issued.Add(25 * time.Hour)) {
		t.Error("Expected expired session to be inactive")
	}
}
