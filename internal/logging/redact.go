package logging

import (
	"regexp"
)

// RedactedText replaces sensitive values in log output.
const RedactedText = "[REDACTED]"

var (
	passwordPattern   = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)
)

// RedactAPIKey keeps only the last four characters of an API key.
func RedactAPIKey(key string) string {
	if len(key) <= 4 {
		return RedactedText
	}
	return RedactedText + key[len(key)-4:]
}

// SanitizeConnectionString removes passwords from connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}
