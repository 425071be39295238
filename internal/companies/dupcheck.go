package companies

import (
	"context"
	"sync"
	"time"

	"vms-backend/internal/pkg/validation"
)

// The proactive duplicate check fires while the user is still typing, so
// responses can resolve out of order. Requests are not cancelable; instead
// every request carries a sequence stamp and only the newest one may
// deliver its result. A slower stale response is discarded, never allowed
// to overwrite a newer one.

// ExistsFunc answers whether a company name is already taken.
type ExistsFunc func(ctx context.Context, name string) (bool, error)

// CheckResult is delivered to OnResult for the newest surviving request.
type CheckResult struct {
	Seq    uint64
	Name   string
	Exists bool
	Err    error
}

const defaultDebounce = 500 * time.Millisecond

// NameChecker is the debounced, sequence-stamped proactive checker. One
// checker serves one form field.
type NameChecker struct {
	Exists   ExistsFunc
	OnResult func(CheckResult)
	Debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	issued uint64
}

// Observe records a keystroke burst. The existence query fires Debounce
// after the last call, and only when the name is validator-clean; invalid
// input cancels any pending query instead.
func (c *NameChecker) Observe(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !validation.IsValidCompanyName(name) {
		return
	}

	d := c.Debounce
	if d <= 0 {
		d = defaultDebounce
	}
	c.timer = time.AfterFunc(d, func() {
		c.Flush(name)
	})
}

// Flush issues the existence query immediately, bypassing the debounce.
// The result is delivered through OnResult unless a newer Flush happened in
// the meantime.
func (c *NameChecker) Flush(name string) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	go func() {
		exists, err := c.Exists(context.Background(), name)

		c.mu.Lock()
		stale := seq != c.issued
		cb := c.OnResult
		c.mu.Unlock()

		if stale || cb == nil {
			return
		}
		cb(CheckResult{Seq: seq, Name: name, Exists: exists, Err: err})
	}()
}

// Confirm is the authoritative check run before the preview step and again
// before final submission. It awaits the answer and blocks progress on a
// positive result; the caller aborts navigation when exists is true.
func (c *NameChecker) Confirm(ctx context.Context, name string) (bool, error) {
	return c.Exists(ctx, name)
}
