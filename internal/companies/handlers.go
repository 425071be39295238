package companies

import (
	"errors"
	"strings"

	"vms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles company invitation handlers with the service.
type Handlers struct {
	Service *Service
}

// Exists GET /api/v1/companies/exists?name=
func (h *Handlers) Exists(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return response.Error(c, "name query parameter is required", 400, nil)
	}

	exists, err := h.Service.Exists(c.Context(), name)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Existence check complete", fiber.Map{"exists": exists}, nil)
}

// Invite POST /api/v1/companies/invite
func (h *Handlers) Invite(c *fiber.Ctx) error {
	var in InviteCompanyInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "companyName, phoneNo and email are required", 400, nil)
	}

	company, err := h.Service.Invite(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateCompanyName):
			return response.ErrorWithCode(c, ErrDuplicateCompanyName.Error(), fiber.StatusConflict, DuplicateCompanyCode, nil)
		case errors.Is(err, ErrInvalidCompanyName), errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrInvalidEmail):
			return response.Error(c, err.Error(), 400, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.SuccessCreated(c, "Company invited successfully", company, nil)
}
