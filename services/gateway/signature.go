package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// verifyHMAC compares an expected hex-encoded HMAC-SHA256 of payload against
// the provided signature in constant time.
func verifyHMAC(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload produces the hex HMAC-SHA256 of payload with secret. Exposed for
// tests that need to forge valid signatures.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
