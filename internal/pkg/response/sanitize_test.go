package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePassesCleanMessages(t *testing.T) {
	for _, msg := range []string{
		"Visitor Not Found",
		"Already Checked In",
		"Company name already exists",
		"Rejection reason is required",
	} {
		assert.Equal(t, msg, Sanitize(msg))
	}
}

func TestSanitizeRewritesInternalMessages(t *testing.T) {
	for _, msg := range []string{
		"ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)",
		"pq: relation does not exist",
		"dial tcp 127.0.0.1:5432: connection refused",
		"runtime error: invalid memory address",
		"Internal Server Error",
		"",
	} {
		assert.Equal(t, "Something went wrong. Please try again.", Sanitize(msg))
	}
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal("pq: something broke"))
	assert.False(t, IsInternal("Visitor Not Found"))
	assert.False(t, IsInternal("Something went wrong. Please try again."))
}
