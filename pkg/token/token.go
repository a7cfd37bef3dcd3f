package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

const (
	shareTokenBytes           = 32
	ShareTokenLength          = shareTokenBytes * 2
	displayPrefixLength       = 8
	errGenerateRandomBytesFmt = "failed to generate random bytes: %w"
	errByteLengthPositiveFmt  = "byteLength must be positive"
)

var shareTokenPattern = regexp.MustCompile("^[a-f0-9]{64}$")

func GenerateHex(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf(errByteLengthPositiveFmt)
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf(errGenerateRandomBytesFmt, err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateShareToken returns 32 random bytes as 64 lowercase hex characters.
func GenerateShareToken() (string, error) {
	return GenerateHex(shareTokenBytes)
}

// IsShareTokenFormat is a cheap shape check done before any store lookup.
func IsShareTokenFormat(token string) bool {
	if len(token) != ShareTokenLength {
		return false
	}
	return shareTokenPattern.MatchString(token)
}

// Prefix returns a short, loggable prefix of a token.
func Prefix(token string) string {
	if len(token) < displayPrefixLength {
		return token
	}
	return token[:displayPrefixLength] + "..."
}
