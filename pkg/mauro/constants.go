package mauro

import (
	"fmt"
	"time"
)

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess       = 0  // Run completed, even if rows or files were skipped
	ExitGeneralError  = 1  // Unknown or unclassified error
	ExitUsageError    = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic         = 3  // Internal panic (unexpected crash)
	ExitConfigError   = 10 // Bad API URL, API key or other configuration
	ExitSourceDBError = 12 // Source database connection or query failed
)

const (
	// DefaultExtension is the file extension picked up in directory mode.
	DefaultExtension = ".csv"

	// DefaultHTTPTimeout is the maximum time to wait for one catalog response.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 5 * time.Second

	// DefaultRetryMaxAttempts is the default number of retries after the first lookup.
	DefaultRetryMaxAttempts = 2

	// APIKeyHeader carries the catalog API key on every request.
	APIKeyHeader = "apiKey"

	// DefaultLogPath is where run logs are written unless --log-path is given.
	DefaultLogPath = "logs/"
)

// Timestamp renders t as YYYYMMDD-HHMMSSffffff for log and output file names.
func Timestamp(t time.Time) string {
	return t.Format("20060102-150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}
