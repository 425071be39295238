package identity

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// The codec turns a visitor's ephemeral proof of identity into an OTP/QR
// pair and back. QR payloads may carry a JSON envelope; manual keypad entry
// produces the bare 6-digit string. Both land in Decode.

var otpRe = regexp.MustCompile(`^[0-9]{6}$`)

// qrEnvelope is the structured form a QR payload may carry. Either field
// may hold the code; visitorId is the historical name.
type qrEnvelope struct {
	VisitorID string `json:"visitorId"`
	OTP       string `json:"otp"`
}

// Decode extracts the candidate OTP from a raw scan or entry payload.
// JSON decode is attempted first; on failure the whole payload is treated
// as the literal OTP. Decode never fails — format validation is a separate
// step so malformed input surfaces as "Visitor Not Found" downstream rather
// than a parse error.
func Decode(rawPayload string) string {
	raw := strings.TrimSpace(rawPayload)

	var env qrEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil {
		if env.OTP != "" {
			return env.OTP
		}
		if env.VisitorID != "" {
			return env.VisitorID
		}
	}
	return raw
}

// ValidateFormat reports whether otp is exactly 6 numeric digits.
func ValidateFormat(otp string) bool {
	return otpRe.MatchString(otp)
}

// StripNonDigits removes everything but digits. The manual-entry UI applies
// this before ValidateFormat.
func StripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GenerateOTP mints a random 6-digit code. Leading zeros are allowed, so
// the value is formatted, never parsed back as an integer.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// EncodePayload builds the JSON envelope embedded in the QR image.
func EncodePayload(otp string) string {
	b, _ := json.Marshal(qrEnvelope{VisitorID: otp, OTP: otp})
	return string(b)
}

// GenerateQRDataURI renders the QR image for the given OTP as a PNG data
// URI suitable for direct embedding in the invite email and mobile views.
func GenerateQRDataURI(otp string) (string, error) {
	png, err := qrcode.Encode(EncodePayload(otp), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
