// Package logger scrubs credentials from values that end up in logs and
// audit metadata.
package logger

import (
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

var (
	// A full share token anywhere in a string, e.g. a /v/<token> URL.
	shareTokenPattern = regexp.MustCompile(`\b[a-f0-9]{64}\b`)
	bearerPattern     = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-_.]+`)
	assignmentPattern = regexp.MustCompile(`(?i)\b(password|secret|token|session|csrf)(\s*[:=]\s*)[^\s&,;]+`)
)

// Keys are matched case-insensitively against the whole key, so "tokenId"
// or "prefix" survive while "token" or "sessionSecret" do not.
var sensitiveKeys = map[string]struct{}{
	"token":          {},
	"sharetoken":     {},
	"share_token":    {},
	"jwt":            {},
	"authorization":  {},
	"cookie":         {},
	"session":        {},
	"sessionsecret":  {},
	"session_secret": {},
	"csrf":           {},
	"csrftoken":      {},
	"csrf_token":     {},
	"password":       {},
	"secret":         {},
	"secretkey":      {},
	"secret_key":     {},
}

// SanitizeString redacts bearer credentials, key=value secrets and raw
// share tokens.
func SanitizeString(s string) string {
	s = bearerPattern.ReplaceAllString(s, "${1}"+redactedPlaceholder)
	s = assignmentPattern.ReplaceAllString(s, "${1}${2}"+redactedPlaceholder)
	return shareTokenPattern.ReplaceAllString(s, redactedPlaceholder)
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// SanitizeMap returns a copy of data with sensitive keys redacted and string
// values scrubbed. Nested maps are handled too.
func SanitizeMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]any, len(data))
	for k, v := range data {
		if isSensitiveKey(k) {
			sanitized[k] = redactedPlaceholder
			continue
		}
		sanitized[k] = sanitizeValue(v)
	}

	return sanitized
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitizeString(val)
	case map[string]any:
		return SanitizeMap(val)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = SanitizeString(s)
		}
		return out
	default:
		return v
	}
}
