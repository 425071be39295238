package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecode_BareOTP returns a bare 6-digit string unchanged.
func TestDecode_BareOTP(t *testing.T) {
	assert.Equal(t, "482913", Decode("482913"))
	assert.Equal(t, "482913", Decode("  482913\n"))
}

// TestDecode_JSONEnvelope pulls the code out of a structured QR payload.
func TestDecode_JSONEnvelope(t *testing.T) {
	assert.Equal(t, "123456", Decode(`{"visitorId":"123456"}`))
	assert.Equal(t, "654321", Decode(`{"otp":"654321"}`))
	// otp wins when both are present
	assert.Equal(t, "111111", Decode(`{"visitorId":"222222","otp":"111111"}`))
}

// TestDecode_MalformedJSON falls back to the raw string instead of failing.
func TestDecode_MalformedJSON(t *testing.T) {
	assert.Equal(t, `{"visitorId":`, Decode(`{"visitorId":`))
	assert.Equal(t, "not-a-code", Decode("not-a-code"))
	// valid JSON but no known field: raw fallback
	assert.Equal(t, `{"foo":"bar"}`, Decode(`{"foo":"bar"}`))
}

func TestValidateFormat(t *testing.T) {
	assert.True(t, ValidateFormat("000000"))
	assert.True(t, ValidateFormat("482913"))
	assert.False(t, ValidateFormat("48291"))
	assert.False(t, ValidateFormat("4829131"))
	assert.False(t, ValidateFormat("48a913"))
	assert.False(t, ValidateFormat(""))
}

func TestStripNonDigits(t *testing.T) {
	assert.Equal(t, "482913", StripNonDigits("48-29 13"))
	assert.Equal(t, "", StripNonDigits("abc"))
}

// TestGenerateOTP_FormatAndRoundTrip: minted codes are always 6 digits and
// survive the envelope round trip.
func TestGenerateOTP_FormatAndRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.True(t, ValidateFormat(otp), "minted OTP %q is not 6 digits", otp)
		assert.Equal(t, otp, Decode(EncodePayload(otp)))
	}
}

func TestGenerateQRDataURI(t *testing.T) {
	uri, err := GenerateQRDataURI("482913")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
