package credentials

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 12

// Fingerprint returns a short, stable identifier for a token that is safe to
// log. Two log lines with the same fingerprint refer to the same token.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}

	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
