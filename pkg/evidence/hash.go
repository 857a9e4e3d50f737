package evidence

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the lowercase hex SHA-256 digest of the text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
