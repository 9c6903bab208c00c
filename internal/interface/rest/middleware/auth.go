package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/verseroom/verseroom/internal/domain"
	"github.com/verseroom/verseroom/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyRequester resolves the bearer token, when present, and stores the
// requesting user in the request context. Requests without a usable token
// proceed anonymously; each handler decides what it requires.
func (m *AuthMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyRequester")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, token := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}

			{
				user, err := m.auth.Authenticate(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyRequester: authenticate failed"))
					goto skipCheckAuthorization
				}

				ctx = context.WithValue(ctx, domain.RequesterCtxKey, user)
				ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, user.ID)
				span.SetAttributes(attribute.Int64("RequesterId", user.ID))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
