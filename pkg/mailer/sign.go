package mailer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const SignatureHeader = "X-Signature"

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify is the receiving side of Sign; the email function uses the same scheme.
func Verify(body []byte, given, secret string) bool {
	if given == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(given))
}
