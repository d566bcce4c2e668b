package catalog

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// scheme, host, any path, ending in /api with an optional trailing slash
var apiRootPattern = regexp.MustCompile(`^https?://[^/\s]+(/\S*)?/api/?$`)

// canonicalUUIDLength is the 8-4-4-4-12 form. uuid.Parse also accepts the
// 32-digit, braced and urn forms, which differ in length.
const canonicalUUIDLength = 36

// Config holds everything needed to talk to one catalog instance.
type Config struct {
	BaseURL string
	APIKey  string

	// Timeout bounds one HTTP request. Zero means mauro.DefaultHTTPTimeout.
	Timeout time.Duration

	// MaxAttempts is the number of retries after the first lookup attempt.
	// Negative values are treated as zero.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with the default timeout and retry policy.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Timeout:      mauro.DefaultHTTPTimeout,
		MaxAttempts:  mauro.DefaultRetryMaxAttempts,
		InitialDelay: mauro.DefaultRetryInitialDelay,
		MaxDelay:     mauro.DefaultRetryMaxDelay,
	}
}

// ValidateBaseURL checks the base URL format without contacting the network.
func ValidateBaseURL(baseURL string) error {
	if baseURL == "" {
		return &mauro.ConfigError{Field: "api url", Reason: "is required"}
	}
	if !apiRootPattern.MatchString(baseURL) {
		return &mauro.ConfigError{
			Field:  "api url",
			Value:  baseURL,
			Reason: "must be http(s)://host[/path]/api",
		}
	}
	return nil
}

// ValidateAPIKey checks the API key format without contacting the network.
// The key itself is never echoed back in the error.
func ValidateAPIKey(key string) error {
	if key == "" {
		return &mauro.ConfigError{Field: "api key", Reason: "is required"}
	}
	if _, err := uuid.Parse(key); err != nil || len(key) != canonicalUUIDLength {
		return &mauro.ConfigError{Field: "api key", Reason: "must be a UUID (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx)"}
	}
	return nil
}

// Validate runs both format checks.
func (c Config) Validate() error {
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return err
	}
	return ValidateAPIKey(c.APIKey)
}
