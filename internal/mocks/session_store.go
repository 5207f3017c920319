package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/docket-api/internal/domain"
	"github.com/phrazzld/docket-api/internal/store"
)

// MockSessionStore implements store.SessionStore for testing
type MockSessionStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, session *domain.Session) error
	GetByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	RevokeFn        func(ctx context.Context, token string) error
	DeleteExpiredFn func(ctx context.Context, before time.Time) (int64, error)

	// Data for default implementation, keyed by token
	Sessions    map[string]*domain.Session
	CreateError error
}

// NewMockSessionStore creates a new mock store with initialized defaults
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		Sessions: make(map[string]*domain.Session),
	}
}

// AddSession seeds the mock with an existing session.
func (m *MockSessionStore) AddSession(session *domain.Session) {
	m.Sessions[session.Token] = session
}

// Create implements the SessionStore interface
func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Sessions[session.Token]; exists {
		return store.ErrTokenExists
	}

	m.Sessions[session.Token] = session
	return nil
}

// GetByToken implements the SessionStore interface. Expired and revoked
// sessions are returned untouched, matching the real store.
func (m *MockSessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}

	session, exists := m.Sessions[token]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	return session, nil
}

// Revoke implements the SessionStore interface
func (m *MockSessionStore) Revoke(ctx context.Context, token string) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, token)
	}

	session, exists := m.Sessions[token]
	if !exists {
		return store.ErrSessionNotFound
	}

	session.Revoked = true
	return nil
}

// DeleteExpired implements the SessionStore interface
func (m *MockSessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx, before)
	}

	var removed int64
	for token, session := range m.Sessions {
		if session.ExpiresAt.Before(before) || session.Revoked {
			delete(m.Sessions, token)
			removed++
		}
	}

	return removed, nil
}

// WithTx implements the SessionStore interface for transaction support
func (m *MockSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	// For mock purposes, just return the same mock
	return m
}
