package scanflow

import (
	"errors"

	"vms-backend/internal/pkg/response"
	"vms-backend/internal/status"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the verify/hand-off endpoints with the controller.
type Handlers struct {
	Controller *Controller
}

type verifyRequest struct {
	Payload string `json:"payload"`
	// Direction is "check-in" or "check-out"; fromCheckout is the older
	// flag form the shell still sends.
	Direction    string `json:"direction"`
	FromCheckout bool   `json:"fromCheckout"`
	Station      string `json:"station"`
}

// Verify POST /api/v1/checkin/verify
//
// Serves both camera-scanned QR payloads and manual 6-digit entry; the
// fromCheckout flag selects the direction, mirroring the navigation
// parameter the shell passes between flows.
func (h *Handlers) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil || req.Payload == "" {
		return response.Error(c, "payload is required", 400, nil)
	}

	station := req.Station
	if station == "" {
		station = c.IP()
	}
	dir := status.DirectionCheckIn
	if req.FromCheckout || req.Direction == status.DirectionCheckOut.String() {
		dir = status.DirectionCheckOut
	}

	res, err := h.Controller.Verify(c.Context(), VerifyInput{
		Station:   station,
		Direction: dir,
		Payload:   req.Payload,
	})
	if err != nil {
		var gerr *status.GuardError
		switch {
		case errors.Is(err, ErrBusy):
			return response.Error(c, ErrBusy.Error(), fiber.StatusTooManyRequests, nil)
		case errors.Is(err, ErrVisitorNotFound):
			return response.Error(c, "Visitor Not Found", fiber.StatusNotFound, fiber.Map{"notification": res.Notification})
		case errors.As(err, &gerr):
			return response.Error(c, gerr.Title, fiber.StatusConflict, fiber.Map{"notification": res.Notification})
		default:
			return response.Error(c, "Internal Server Error", 500, nil)
		}
	}
	return response.Success(c, "Visitor verified", res, nil)
}

// Handoff GET /api/v1/checkin/handoff/:key
//
// Pops the single-use check-out hand-off payload stored by a successful
// check-out verification.
func (h *Handlers) Handoff(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return response.Error(c, "Missing handoff key", 400, nil)
	}

	visitor, err := h.Controller.Handoff.Pop(c.Context(), key)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	if visitor == nil {
		return response.Error(c, "Handoff expired or already consumed", 404, nil)
	}
	return response.Success(c, "Handoff retrieved", fiber.Map{"visitor": visitor}, nil)
}
