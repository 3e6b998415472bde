package server

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// UnknownClient is the sentinel identity when no trusted proxy header is
// present. All such clients share one rate-limit bucket.
const UnknownClient = "unknown"

// ClientIP reads the client address from the trusted proxy headers, first
// hop only. Spoofable when the service runs without a fronting proxy; that
// degrades rate limiting into a shared bucket, nothing more.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return UnknownClient
}

// HashIdentity derives the fixed-length irreversible ip_hash persisted with
// each record and used as the rate-limiter key.
func HashIdentity(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

func normalizePlatform(p string) string {
	return strings.ToLower(p)
}
