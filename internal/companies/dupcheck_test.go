package companies

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNameChecker_StaleResponseDiscarded: a request for "Acme" issued first
// but resolving last must not overwrite the newer "Acme Corp" result.
func TestNameChecker_StaleResponseDiscarded(t *testing.T) {
	release := map[string]chan struct{}{
		"Acme":      make(chan struct{}),
		"Acme Corp": make(chan struct{}),
	}
	answers := map[string]bool{"Acme": true, "Acme Corp": false}

	var mu sync.Mutex
	var delivered []CheckResult
	done := make(chan struct{}, 2)

	checker := &NameChecker{
		Exists: func(_ context.Context, name string) (bool, error) {
			<-release[name]
			return answers[name], nil
		},
		OnResult: func(r CheckResult) {
			mu.Lock()
			delivered = append(delivered, r)
			mu.Unlock()
			done <- struct{}{}
		},
	}

	checker.Flush("Acme")      // t=0
	checker.Flush("Acme Corp") // t=100ms, supersedes

	// Newer request resolves first, stale one after.
	close(release["Acme Corp"])
	<-done
	close(release["Acme"])

	// Give the stale goroutine a moment to (not) deliver.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Equal(t, "Acme Corp", delivered[0].Name)
	assert.False(t, delivered[0].Exists)
}

// TestNameChecker_DebounceCoalesces: a keystroke burst produces a single
// query for the final value.
func TestNameChecker_DebounceCoalesces(t *testing.T) {
	var mu sync.Mutex
	var queried []string
	done := make(chan struct{}, 4)

	checker := &NameChecker{
		Debounce: 20 * time.Millisecond,
		Exists: func(_ context.Context, name string) (bool, error) {
			mu.Lock()
			queried = append(queried, name)
			mu.Unlock()
			return false, nil
		},
		OnResult: func(CheckResult) { done <- struct{}{} },
	}

	checker.Observe("Ac")
	checker.Observe("Acm")
	checker.Observe("Acme")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced check never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queried, 1)
	assert.Equal(t, "Acme", queried[0])
}

// TestNameChecker_InvalidInputCancels: an invalid name cancels the pending
// query rather than firing it.
func TestNameChecker_InvalidInputCancels(t *testing.T) {
	fired := make(chan string, 1)
	checker := &NameChecker{
		Debounce: 20 * time.Millisecond,
		Exists: func(_ context.Context, name string) (bool, error) {
			fired <- name
			return false, nil
		},
	}

	checker.Observe("Acme")
	checker.Observe("A") // too short: cancels

	select {
	case name := <-fired:
		t.Fatalf("query fired for %q after input became invalid", name)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNameChecker_Confirm(t *testing.T) {
	checker := &NameChecker{
		Exists: func(_ context.Context, name string) (bool, error) {
			return name == "Acme", nil
		},
	}

	exists, err := checker.Confirm(context.Background(), "Acme")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = checker.Confirm(context.Background(), "Fresh Name")
	require.NoError(t, err)
	assert.False(t, exists)
}
