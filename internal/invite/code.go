// Package invite produces the short codes used to join groups.
package invite

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeLength is the number of characters in a canonical invite code.
const CodeLength = 8

// Generator yields candidate invite codes. Uniqueness is enforced by the group
// store, not by the generator.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws codes from crypto/rand as uppercase hex.
type RandomGenerator struct{}

func (RandomGenerator) Generate() (string, error) {
	buf := make([]byte, CodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Normalize converts user input to the canonical stored form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
