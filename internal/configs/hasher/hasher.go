package hasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header carries the HMAC-SHA256 of an uncompressed request body.
const Header = "HashSHA256"

// Hasher signs payloads with HMAC-SHA256.
type Hasher struct {
	key []byte
}

// New returns a Hasher for key, or nil when key is empty so callers can skip
// signing with a nil check.
func New(key string) *Hasher {
	if key == "" {
		return nil
	}
	return &Hasher{key: []byte(key)}
}

// Hash returns the hex-encoded HMAC-SHA256 of data.
func (h *Hasher) Hash(data []byte) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sum is the hash of data.
func (h *Hasher) Verify(data []byte, sum string) bool {
	expected, err := hex.DecodeString(sum)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.key)
	mac.Write(data)
	return hmac.Equal(mac.Sum(nil), expected)
}
