package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateLetters returns length random upper-case ASCII letters.
func GenerateLetters(length int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	code := make([]byte, length)
	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := 0; i < length; i++ {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code), nil
}

// GenerateBookingReference builds "BK" + the last 8 digits of the unix
// millisecond timestamp + 4 random letters, e.g. BK84920173QZTA.
func GenerateBookingReference(now time.Time) (string, error) {
	millis := fmt.Sprintf("%08d", now.UnixMilli())
	suffix, err := GenerateLetters(4)
	if err != nil {
		return "", err
	}
	return "BK" + millis[len(millis)-8:] + suffix, nil
}
