package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// refreshTokenBytes is the entropy size; the hex form is twice as long
// and is what gets stored on the session and looked up by the GSI.
const refreshTokenBytes = 32

// NewRefreshToken returns a random hex refresh token.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
