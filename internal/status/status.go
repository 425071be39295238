package status

import (
	"fmt"
	"strings"
)

// Canonical visitor lifecycle states. The API historically emitted
// case-insensitive variants, so every comparison goes through Normalize.
const (
	Pending    = "PENDING"
	Approved   = "APPROVED"
	CheckedIn  = "CHECKED_IN"
	CheckedOut = "CHECKED_OUT"
	Rejected   = "REJECTED"
)

// Direction is the physical action a scanned code is authorizing.
type Direction int

const (
	DirectionCheckIn Direction = iota
	DirectionCheckOut
)

func (d Direction) String() string {
	if d == DirectionCheckOut {
		return "check-out"
	}
	return "check-in"
}

// Normalize maps a raw status string to its canonical form. ok is false for
// anything outside the five known states.
func Normalize(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	switch s {
	case Pending, Approved, CheckedIn, CheckedOut, Rejected:
		return s, true
	}
	return s, false
}

// GuardError is a state-guard violation: the visitor exists but their
// current status forbids the requested direction. Title is the short
// user-facing headline, Detail names the conflicting status.
type GuardError struct {
	Title  string
	Detail string
}

func (e *GuardError) Error() string {
	if e.Detail == "" {
		return e.Title
	}
	return e.Title + ": " + e.Detail
}

// Guard checks whether the visitor's current status permits the requested
// direction. Returns nil when the transition is allowed. This runs
// client-and-server side after a successful identity decode; it is a second,
// independent check on top of code resolution.
func Guard(current string, dir Direction) *GuardError {
	s, _ := Normalize(current)

	if dir == DirectionCheckIn {
		switch s {
		case Approved:
			return nil
		case CheckedIn:
			return &GuardError{Title: "Already Checked In", Detail: "This visitor has already checked in."}
		case CheckedOut:
			return &GuardError{Title: "Already Checked Out", Detail: "This visitor has already checked out."}
		default:
			return &GuardError{
				Title:  "Not Approved",
				Detail: fmt.Sprintf("Visitor is not approved for check-in (current status: %s).", s),
			}
		}
	}

	switch s {
	case CheckedIn:
		return nil
	case CheckedOut:
		return &GuardError{Title: "Already Checked Out", Detail: "This visitor has already checked out."}
	case Approved:
		return &GuardError{Title: "Not Checked In", Detail: "Visitor has not checked in yet."}
	default:
		return &GuardError{
			Title:  "Invalid Status for Checkout",
			Detail: fmt.Sprintf("Visitor cannot check out (current status: %s).", s),
		}
	}
}

// Target returns the status a successful transition in the given direction
// lands on.
func Target(dir Direction) string {
	if dir == DirectionCheckOut {
		return CheckedOut
	}
	return CheckedIn
}

// CanReview reports whether host approve/reject actions are legal for the
// current status. Only PENDING visitors can be reviewed; for anything else
// the UI shows a read-only view.
func CanReview(current string) bool {
	s, ok := Normalize(current)
	return ok && s == Pending
}
