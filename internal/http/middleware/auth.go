package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"jobportal/internal/common"
	"jobportal/internal/domain/user"
	"jobportal/internal/security"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return common.NewError(common.CodeUnauthorized, "missing authorization header", nil)
		}
		if err := m.identify(c, header); err != nil {
			return err
		}
		return next(c)
	}
}

// OptionalAuth identifies the caller when a token is present and lets guests
// through. A malformed or expired token is still rejected.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}
		if err := m.identify(c, header); err != nil {
			return err
		}
		return next(c)
	}
}

func (m *AuthMiddleware) identify(c echo.Context, header string) error {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return common.NewError(common.CodeUnauthorized, "invalid authorization header", nil)
	}
	claims, err := m.jwt.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	userID, err := common.ParseUUID(claims.UserID)
	if err != nil {
		return common.NewError(common.CodeUnauthorized, "invalid user id", err)
	}
	role, ok := user.ParseRole(claims.Role)
	if !ok {
		return common.NewError(common.CodeUnauthorized, "invalid role", nil)
	}
	c.Set(ContextUserIDKey, userID)
	c.Set(ContextRoleKey, role)
	return nil
}

func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := RoleFromContext(c)
			if !ok {
				return common.NewError(common.CodeUnauthorized, "authentication required", nil)
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return common.NewError(common.CodeForbidden, "insufficient role", nil)
		}
	}
}

func UserIDFromContext(c echo.Context) (common.UUID, bool) {
	id, ok := c.Get(ContextUserIDKey).(common.UUID)
	return id, ok && !id.IsZero()
}

func RoleFromContext(c echo.Context) (user.Role, bool) {
	role, ok := c.Get(ContextRoleKey).(user.Role)
	return role, ok && role != ""
}
