package auth

import (
	"errors"

	"vms-backend/internal/middleware"
	"vms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles auth handlers with their dependencies.
type Handlers struct {
	UserFinder UserFinder
	JWTSecret  string
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), 400, nil)
	}

	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrIncorrectPassword):
			return response.Error(c, err.Error(), 401, nil)
		default:
			// raw driver errors go through the sanitizer in response.Error
			return response.Error(c, err.Error(), 500, nil)
		}
	}

	token, err := IssueToken(h.JWTSecret, user)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	return response.Success(c, "Login successful", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"user_id": user.UserID.String(),
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
		},
	}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	u := middleware.GetAuthUser(c)
	if u == nil {
		return response.Unauthorized(c, ErrNotAuthenticated.Error())
	}
	return response.Success(c, "Authenticated", u, nil)
}
