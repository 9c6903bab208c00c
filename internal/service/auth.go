package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/verseroom/verseroom/internal/domain"
)

var tracer = otel.Tracer("auth")

// UserStore is the slice of user persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByToken(ctx context.Context, token string) (domain.User, error)
}

type AuthService struct {
	users UserStore
	cache *cache.Cache
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{
		users: users,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Register creates a user and issues their opaque API token.
func (s *AuthService) Register(ctx context.Context, handle, roleToken string) (domain.User, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domain.User{}, domain.ValidationError{Message: "handle is required"}
	}
	role, ok := domain.ParseRole(roleToken)
	if !ok {
		return domain.User{}, domain.ValidationError{Message: "unknown role"}
	}

	user := domain.User{
		Handle: handle,
		Role:   role,
		Token:  uuid.NewString(),
	}
	return s.users.Create(ctx, user)
}

// Authenticate resolves a bearer token to a user, with a short-lived
// in-process cache in front of the store.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Authenticate")
	defer span.End()

	if token == "" {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}

	if cached, found := s.cache.Get(token); found {
		return cached.(domain.User), nil
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "token lookup failed"))
		return domain.User{}, err
	}

	s.cache.Set(token, user, cache.DefaultExpiration)
	return user, nil
}
