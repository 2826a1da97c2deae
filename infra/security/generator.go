package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const defaultSecretBytes = 32

// SecretGenerator implements port.SecretGenerator with crypto/rand. The
// generated plaintext is url-safe base64 and is handed out exactly once.
type SecretGenerator struct {
	bytes int
}

// NewSecretGenerator constructs a generator; size <= 0 falls back to 32 bytes.
func NewSecretGenerator(size int) *SecretGenerator {
	if size <= 0 {
		size = defaultSecretBytes
	}
	return &SecretGenerator{bytes: size}
}

// Generate implements port.SecretGenerator.
func (g *SecretGenerator) Generate() (string, error) {
	buf := make([]byte, g.bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
