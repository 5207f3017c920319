package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/docket-api/internal/domain"
)

// MockAuthService implements auth.AuthService for testing
type MockAuthService struct {
	// Custom behavior functions
	RegisterFn func(ctx context.Context, username, email, password string) (*domain.User, error)
	LoginFn    func(ctx context.Context, username, password string) (*domain.Session, *domain.User, error)
	LogoutFn   func(ctx context.Context, token string) error
	ResolveFn  func(ctx context.Context, token string) (uuid.UUID, error)

	// Default response values
	User    *domain.User
	Session *domain.Session
	UserID  uuid.UUID
	Err     error

	// Call tracking for verification
	RegisterCalls struct {
		mu        sync.Mutex
		Count     int
		Usernames []string
	}

	ResolveCalls struct {
		mu     sync.Mutex
		Count  int
		Tokens []string
	}
}

// Register implements the auth.AuthService interface
func (m *MockAuthService) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	m.RegisterCalls.mu.Lock()
	m.RegisterCalls.Count++
	m.RegisterCalls.Usernames = append(m.RegisterCalls.Usernames, username)
	m.RegisterCalls.mu.Unlock()

	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, username, email, password)
	}

	return m.User, m.Err
}

// Login implements the auth.AuthService interface
func (m *MockAuthService) Login(
	ctx context.Context,
	username, password string,
) (*domain.Session, *domain.User, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}

	return m.Session, m.User, m.Err
}

// Logout implements the auth.AuthService interface
func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}

	return m.Err
}

// Resolve implements the auth.AuthService interface
func (m *MockAuthService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	m.ResolveCalls.mu.Lock()
	m.ResolveCalls.Count++
	m.ResolveCalls.Tokens = append(m.ResolveCalls.Tokens, token)
	m.ResolveCalls.mu.Unlock()

	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, token)
	}

	return m.UserID, m.Err
}
