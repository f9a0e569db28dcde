// Package signature implements the shared-secret HMAC scheme used to
// authenticate webhook deliveries from the bot platform.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const prefix = "sha256="

// Sign computes the signature header value for a raw request body.
func Sign(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return prefix + hex.EncodeToString(h.Sum(nil))
}

// Verify checks a signature header value against the raw body. The
// comparison is constant time.
func Verify(secret string, body []byte, header string) bool {
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}
