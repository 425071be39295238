package scanflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"vms-backend/internal/identity"
	"vms-backend/internal/models"
	"vms-backend/internal/status"

	"github.com/rs/zerolog/log"
)

// The controller drives the full "prove identity → check status guard →
// hand off" sequence for one scan or manual-entry attempt. Camera QR
// content and keyboard 6-digit entry arrive through the same Verify entry
// point; steps run strictly in order and short-circuit on the first
// failure.

// State is the controller's position in the verify sequence. Nothing here
// survives a restart; a fresh attempt always starts at Idle.
type State int

const (
	StateIdle State = iota
	StateDecoding
	StateResolving
	StateGuardChecking
	StateNavigated
)

var (
	// ErrBusy: a result popup is still showing; the attempt is dropped,
	// not queued.
	ErrBusy = errors.New("Scan ignored: a result is already being displayed")
	// ErrVisitorNotFound: the code is malformed or resolves to no visitor.
	ErrVisitorNotFound = errors.New("Visitor Not Found")
)

// Next-screen names handed back to the shell.
const (
	ScreenCheckinProcess  = "checkin-process"
	ScreenCheckoutSummary = "checkout-summary"
)

// Resolver looks up the full visitor record behind a validated OTP.
// found=false is the structural "code not found" outcome; err is reserved
// for transport failures.
type Resolver interface {
	ResolveByCode(ctx context.Context, otp string) (v *models.Visitor, found bool, err error)
}

// Notification is the short title + description pair every terminal
// outcome produces.
type Notification struct {
	Kind    string `json:"kind"` // "success" or "error"
	Title   string `json:"title"`
	Message string `json:"message"`
}

// VerifyInput is one scan or manual-entry attempt.
type VerifyInput struct {
	// Station identifies the kiosk/device so the single-flight popup guard
	// spans all of its requests.
	Station string
	// Direction is derived from the invoking flow (e.g. a "fromCheckout"
	// navigation parameter).
	Direction status.Direction
	// Payload is the raw scanned QR content or the assembled 6-digit
	// manual entry.
	Payload string
}

// VerifyResult is the terminal outcome of one attempt. On success exactly
// one of QueryPayload (check-in) or HandoffKey (check-out) is set.
type VerifyResult struct {
	Visitor      *models.Visitor `json:"visitor,omitempty"`
	Notification Notification    `json:"notification"`
	NextScreen   string          `json:"nextScreen,omitempty"`
	QueryPayload string          `json:"queryPayload,omitempty"`
	HandoffKey   string          `json:"handoffKey,omitempty"`
}

// Controller orchestrates verify attempts. Safe for concurrent use; the
// state field reflects the most recent attempt for observability only.
type Controller struct {
	Resolver Resolver
	Gate     Gate
	Handoff  *HandoffStore

	mu    sync.Mutex
	state State
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// CurrentState returns the controller's last observed position.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// finish marks the popup shown and resets to Idle. Every terminal outcome
// that displays a result goes through here.
func (c *Controller) finish(ctx context.Context, in VerifyInput, res *VerifyResult) *VerifyResult {
	if err := c.Gate.Shown(ctx, in.Station); err != nil {
		log.Warn().Err(err).Str("station", in.Station).Msg("scanflow: cooldown marker not set")
	}
	c.setState(StateIdle)
	return res
}

// Verify runs one attempt through the ordered pipeline:
//
//	popup guard → decode → resolve → status guard → hand off
//
// A non-nil result always carries the user-facing notification; err
// classifies the failure for the transport layer.
func (c *Controller) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	// 1. Single-flight: drop the attempt while a result is showing.
	showing, err := c.Gate.Showing(ctx, in.Station)
	if err != nil {
		return nil, err
	}
	if showing {
		return nil, ErrBusy
	}

	// 2. Decode the payload into a candidate OTP.
	c.setState(StateDecoding)
	otp := identity.Decode(in.Payload)
	if !identity.ValidateFormat(otp) {
		res := &VerifyResult{Notification: Notification{
			Kind:    "error",
			Title:   "Visitor Not Found",
			Message: "The scanned code is not a valid check-in code.",
		}}
		return c.finish(ctx, in, res), ErrVisitorNotFound
	}

	// 3. Resolve the visitor behind the code.
	c.setState(StateResolving)
	visitor, found, err := c.Resolver.ResolveByCode(ctx, otp)
	if err != nil {
		c.setState(StateIdle)
		return nil, err
	}
	if !found {
		res := &VerifyResult{Notification: Notification{
			Kind:    "error",
			Title:   "Visitor Not Found",
			Message: "No visitor matches this code. Please rescan or re-enter it.",
		}}
		return c.finish(ctx, in, res), ErrVisitorNotFound
	}

	// 4. Status guard for the requested direction. Independent of the
	// decode: a resolvable code does not imply the action is permitted.
	c.setState(StateGuardChecking)
	if gerr := status.Guard(visitor.Status, in.Direction); gerr != nil {
		res := &VerifyResult{
			Visitor: visitor,
			Notification: Notification{
				Kind:    "error",
				Title:   gerr.Title,
				Message: gerr.Detail,
			},
		}
		return c.finish(ctx, in, res), gerr
	}

	// 5. Success: hand off to the next screen.
	res := &VerifyResult{
		Visitor: visitor,
		Notification: Notification{
			Kind:    "success",
			Title:   "Visitor Verified",
			Message: fmt.Sprintf("%s verified for %s.", visitor.FullName, in.Direction),
		},
	}
	if in.Direction == status.DirectionCheckOut {
		key, err := c.Handoff.Put(ctx, visitor)
		if err != nil {
			c.setState(StateIdle)
			return nil, err
		}
		res.NextScreen = ScreenCheckoutSummary
		res.HandoffKey = key
	} else {
		payload, err := json.Marshal(visitor)
		if err != nil {
			c.setState(StateIdle)
			return nil, err
		}
		res.NextScreen = ScreenCheckinProcess
		res.QueryPayload = string(payload)
	}

	c.setState(StateNavigated)
	log.Info().Uint("visitor_id", visitor.ID).Str("direction", in.Direction.String()).Msg("scan verified")
	return c.finish(ctx, in, res), nil
}
