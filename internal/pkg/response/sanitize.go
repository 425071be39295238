package response

import "strings"

// Fragments that identify an internal/backend error string. A message
// matching any of these is rewritten to generic text before display; raw
// driver or runtime output must never reach a visitor-facing screen.
var internalPatterns = []string{
	"SQLSTATE",
	"sqlstate",
	"pq:",
	"pgx",
	"dial tcp",
	"connection refused",
	"goroutine",
	"runtime error",
	"duplicate key value",
	"syntax error",
	"Internal Server Error",
	"internal server error",
	"500",
}

const genericMessage = "Something went wrong. Please try again."

// Sanitize rewrites messages that match known internal patterns. Clean
// messages pass through unchanged.
func Sanitize(message string) string {
	if message == "" {
		return genericMessage
	}
	for _, p := range internalPatterns {
		if strings.Contains(message, p) {
			return genericMessage
		}
	}
	return message
}

// IsInternal reports whether a message matches a known internal pattern.
func IsInternal(message string) bool {
	return Sanitize(message) == genericMessage && message != genericMessage
}
