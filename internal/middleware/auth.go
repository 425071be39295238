package middleware

import (
	"errors"
	"strings"

	"vms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const authLocal = "auth_user"

// AuthUser is the authenticated actor extracted from the bearer token.
type AuthUser struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Claims is the JWT claim set issued at login.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth validates the Authorization: Bearer header. A missing or
// invalid token is an Authentication Error surfaced before any data access.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return response.Unauthorized(c, "Authentication Error")
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			return response.Unauthorized(c, "Authentication Error")
		}

		c.Locals(authLocal, &AuthUser{
			UserID: claims.Subject,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		return c.Next()
	}
}

// GetAuthUser returns the authenticated actor, or nil outside RequireAuth.
func GetAuthUser(c *fiber.Ctx) *AuthUser {
	u, _ := c.Locals(authLocal).(*AuthUser)
	return u
}

// SetAuthUser injects an actor directly; used by handler tests.
func SetAuthUser(c *fiber.Ctx, u *AuthUser) {
	c.Locals(authLocal, u)
}

// RequireRole allows only the listed roles past; runs after RequireAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := GetAuthUser(c)
		if u == nil {
			return response.Unauthorized(c, "Authentication Error")
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
}
