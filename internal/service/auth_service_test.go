package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/classtrack/attendance-backend/internal/config"
	"github.com/classtrack/attendance-backend/internal/model"
)

type fakeDelegateStore struct {
	delegates map[string]*model.Delegate
}

func (s *fakeDelegateStore) GetByEmail(_ context.Context, email string) (*model.Delegate, error) {
	d, ok := s.delegates[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDelegateStore) GetByID(_ context.Context, id int) (*model.Delegate, error) {
	for _, d := range s.delegates {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func testAuthService(t *testing.T) (*AuthService, *model.Delegate) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	delegate := &model.Delegate{ID: 7, Email: "d@example.com", Name: "D", PasswordHash: string(hash)}
	delegates := &fakeDelegateStore{delegates: map[string]*model.Delegate{delegate.Email: delegate}}
	return NewAuthService(cfg, nil, nil, delegates), delegate
}

func TestDelegateLoginRoundTrip(t *testing.T) {
	svc, delegate := testAuthService(t)

	signed, got, err := svc.DelegateLogin(context.Background(), delegate.Email, "password123")
	if err != nil {
		t.Fatalf("DelegateLogin() error = %v", err)
	}
	if got.ID != delegate.ID {
		t.Errorf("delegate ID = %d, want %d", got.ID, delegate.ID)
	}

	claims, err := svc.ValidateToken(signed)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TokenType != TokenTypeDelegate {
		t.Errorf("token type = %v, want delegate", claims.TokenType)
	}
	if claims.UserID != delegate.ID {
		t.Errorf("user ID = %d, want %d", claims.UserID, delegate.ID)
	}
}

func TestDelegateLoginRejections(t *testing.T) {
	svc, delegate := testAuthService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: delegate.Email, password: "nope-wrong"},
		{name: "unknown email", email: "nobody@example.com", password: "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.DelegateLogin(context.Background(), tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("DelegateLogin() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, delegate := testAuthService(t)
	signed, _, err := svc.DelegateLogin(context.Background(), delegate.Email, "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.ValidateToken(signed + "x"); err == nil {
		t.Error("ValidateToken accepted a tampered token")
	}

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour}, nil, nil, nil)
	if _, err := other.ValidateToken(signed); err == nil {
		t.Error("ValidateToken accepted a token signed with a different secret")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	svc, _ := testAuthService(t)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := svc.CheckPassword(hash, "hunter22"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
	if err := svc.CheckPassword(hash, "hunter23"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() wrong password error = %v, want %v", err, ErrInvalidCredentials)
	}
}
