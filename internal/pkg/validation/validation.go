package validation

import (
	"regexp"
	"strings"
)

// emailRe is RFC-shaped, not RFC-complete; the typo denylist below catches
// the common free-mail misspellings that pass the regex.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Company name: letters, digits, spaces and hyphens only.
var companyNameRe = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)

// Syntactically valid domains that are almost certainly typos of free-mail
// providers. Rejected outright rather than warned about.
var typoDomains = map[string]bool{
	"gmial.com":   true,
	"gamil.com":   true,
	"gmal.com":    true,
	"gmaill.com":  true,
	"gnail.com":   true,
	"yahooo.com":  true,
	"yaho.com":    true,
	"hotmial.com": true,
	"hotmal.com":  true,
	"outlok.com":  true,
}

// Country-code prefixes recognized by phone normalization.
var countryCodes = []string{"91", "971", "44", "1"}

// IsValidCompanyName enforces the invite form rule: non-empty, 2-50 chars,
// restricted charset.
func IsValidCompanyName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 50 {
		return false
	}
	return companyNameRe.MatchString(name)
}

// FilterCompanyName drops disallowed characters. The form applies this on
// every keystroke so invalid characters never appear in the field.
func FilterCompanyName(input string) string {
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone reduces a phone number to its 10-digit national form,
// stripping a recognized country-code prefix. ok is false when the result
// is not exactly 10 digits.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if len(d) == 11 && d[0] == '0' {
		d = d[1:]
	} else if len(d) > 10 {
		for _, cc := range countryCodes {
			if len(d) == 10+len(cc) && strings.HasPrefix(d, cc) {
				d = d[len(cc):]
				break
			}
		}
	}

	if len(d) != 10 {
		return d, false
	}
	return d, true
}

// IsValidEmail checks shape plus the typo-domain denylist.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRe.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	return !typoDomains[email[at+1:]]
}
