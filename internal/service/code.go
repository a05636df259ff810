package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// CodeBytes is the number of random bytes behind a coupon code.
// Hex encoding doubles it, so codes are 8 characters from 0-9A-F.
const CodeBytes = 4

// CodeGenerator produces a candidate coupon code.
type CodeGenerator func() (string, error)

// GenerateCode returns an uppercase hex code built from crypto/rand.
func GenerateCode() (string, error) {
	b := make([]byte, CodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
