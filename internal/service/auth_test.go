package service

import (
	"context"
	"errors"
	"testing"

	"github.com/verseroom/verseroom/internal/domain"
)

type mockUserStore struct {
	users   map[string]domain.User
	lookups int
}

func (m *mockUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = int64(len(m.users) + 1)
	m.users[user.Token] = user
	return user, nil
}

func (m *mockUserStore) GetByToken(ctx context.Context, token string) (domain.User, error) {
	m.lookups++
	user, ok := m.users[token]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func TestRegisterIssuesToken(t *testing.T) {
	store := &mockUserStore{users: map[string]domain.User{}}
	svc := NewAuthService(store)

	user, err := svc.Register(context.Background(), " june ", "editor")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Handle != "june" {
		t.Fatalf("expected trimmed handle, got %q", user.Handle)
	}
	if user.Role != domain.RoleEditor {
		t.Fatalf("expected editor role, got %q", user.Role)
	}
	if user.Token == "" {
		t.Fatalf("expected a token to be issued")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&mockUserStore{users: map[string]domain.User{}})

	if _, err := svc.Register(context.Background(), "  ", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty handle, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "june", "superuser"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestAuthenticateCachesLookups(t *testing.T) {
	store := &mockUserStore{users: map[string]domain.User{}}
	svc := NewAuthService(store)

	user, err := svc.Register(context.Background(), "june", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := svc.Authenticate(context.Background(), user.Token)
		if err != nil {
			t.Fatalf("authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Fatalf("expected user %d, got %d", user.ID, got.ID)
		}
	}

	if store.lookups != 1 {
		t.Fatalf("expected a single store lookup, got %d", store.lookups)
	}
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	svc := NewAuthService(&mockUserStore{users: map[string]domain.User{}})

	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for empty token, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown token, got %v", err)
	}
}
