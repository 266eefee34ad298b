package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/service"
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

// IdentifyIdentity resolves the bearer token, if any, into a requester
// id stored on the echo context. Unauthenticated requests pass through.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader == "" {
			return next(c)
		}

		split := strings.Split(authHeader, " ")
		if len(split) != 2 {
			span.RecordError(fmt.Errorf("invalid authentication header"))
			return next(c)
		}

		authType, token := split[0], split[1]
		if authType != "Bearer" {
			span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			return next(c)
		}

		userID, err := s.auth.Verify(ctx, token)
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: token verification failed"))
			return next(c)
		}

		c.Set(domain.RequesterIDCtxKey, userID)
		return next(c)
	}
}

// RequireAuth rejects requests that did not resolve to a requester id.
func (s *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(domain.RequesterIDCtxKey).(string); !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"success": false,
				"message": "Authentication failed",
			})
		}
		return next(c)
	}
}
