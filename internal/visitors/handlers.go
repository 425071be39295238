package visitors

import (
	"errors"
	"strconv"

	"vms-backend/internal/middleware"
	"vms-backend/internal/pkg/response"
	"vms-backend/internal/status"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles visitor handlers with the service.
type Handlers struct {
	Service *Service
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateVisitor POST /api/v1/visitors
func (h *Handlers) CreateVisitor(c *fiber.Ctx) error {
	actor := middleware.GetAuthUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Authentication Error")
	}

	var in CreateVisitorInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrMissingRequiredFields.Error(), 400, nil)
	}
	if in.HostUserID == "" {
		in.HostUserID = actor.UserID
	}

	res, err := h.Service.CreateVisitor(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingRequiredFields):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, ErrHostNotFound):
			return response.Error(c, err.Error(), 404, nil)
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.SuccessCreated(c, "Visitor created successfully", res, nil)
}

// ListVisitors GET /api/v1/visitors?existing=true&limit=&offset=
func (h *Handlers) ListVisitors(c *fiber.Ctx) error {
	actor := middleware.GetAuthUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Authentication Error")
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	visitors, total, err := h.Service.ListVisitors(c.Context(), ListVisitorsInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		ExistingOnly: c.QueryBool("existing"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Visitors fetched successfully", fiber.Map{
		"visitors":   visitors,
		"totalCount": total,
	}, nil)
}

// GetVisitor GET /api/v1/visitors/:id
func (h *Handlers) GetVisitor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid visitor id", 400, nil)
	}

	visitor, err := h.Service.GetVisitor(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrVisitorNotFound) {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Visitor fetched successfully", visitor, nil)
}

// ResolveByCode POST /api/v1/visitors/resolve-code
func (h *Handlers) ResolveByCode(c *fiber.Ctx) error {
	var body struct {
		OTP string `json:"otp"`
	}
	if err := c.BodyParser(&body); err != nil || body.OTP == "" {
		return response.Error(c, "otp is required", 400, nil)
	}

	visitor, found, err := h.Service.ResolveByCode(c.Context(), body.OTP)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	if !found {
		return response.Error(c, "Visitor Not Found", 404, nil)
	}
	return response.Success(c, "Visitor resolved", fiber.Map{"visitor": visitor}, nil)
}

// UpdateVisitor PATCH /api/v1/visitors/:id
func (h *Handlers) UpdateVisitor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid visitor id", 400, nil)
	}

	var in UpdateVisitorInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "No update fields provided", 400, nil)
	}

	visitor, err := h.Service.UpdateVisitor(c.Context(), id, in)
	if err != nil {
		return h.mapUpdateError(c, err)
	}
	return response.Success(c, "Visitor updated successfully", visitor, nil)
}

// Approve POST /api/v1/visitors/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid visitor id", 400, nil)
	}

	visitor, err := h.Service.Approve(c.Context(), id)
	if err != nil {
		return h.mapUpdateError(c, err)
	}
	return response.Success(c, "Visitor approved", visitor, nil)
}

// Reject POST /api/v1/visitors/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid visitor id", 400, nil)
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, ErrRejectionReasonRequired.Error(), 400, nil)
	}

	visitor, err := h.Service.Reject(c.Context(), id, body.Reason)
	if err != nil {
		return h.mapUpdateError(c, err)
	}
	return response.Success(c, "Visitor rejected", visitor, nil)
}

// Reinvite POST /api/v1/visitors/:id/reinvite
func (h *Handlers) Reinvite(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.Error(c, "Invalid visitor id", 400, nil)
	}

	var body struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&body)

	res, err := h.Service.Reinvite(c.Context(), id, body.Email)
	if err != nil {
		if errors.Is(err, ErrVisitorNotFound) {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Visitor reinvited", res, nil)
}

func (h *Handlers) mapUpdateError(c *fiber.Ctx, err error) error {
	var gerr *status.GuardError
	switch {
	case errors.Is(err, ErrVisitorNotFound):
		return response.Error(c, err.Error(), 404, nil)
	case errors.As(err, &gerr):
		return response.Error(c, gerr.Title, fiber.StatusConflict, fiber.Map{"detail": gerr.Detail})
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrInvalidStatusChange):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, ErrRejectionReasonRequired):
		return response.Error(c, err.Error(), 400, nil)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}
