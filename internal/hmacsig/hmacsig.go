// Package hmacsig verifies HMAC-SHA256 request signatures of the form
// "sha256=<hex digest>", computed over the exact raw request body.
package hmacsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix is the required signature header prefix.
const Prefix = "sha256="

// ReadPayload is the fixed payload signed by read requests, which carry no body.
const ReadPayload = "read"

// Sign returns the hex HMAC-SHA256 digest of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header carries a valid signature for payload.
// An empty secret never verifies; a missing or malformed header never
// verifies. Comparison is constant-time.
func Verify(secret string, payload []byte, header string) bool {
	if secret == "" {
		return false
	}
	if !strings.HasPrefix(header, Prefix) {
		return false
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(header, Prefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(provided, mac.Sum(nil))
}

// VerifyRead verifies the signature of a body-less read request, which signs
// the literal string "read" instead of a request body.
func VerifyRead(secret, header string) bool {
	return Verify(secret, []byte(ReadPayload), header)
}
