package testinfra

import (
	"context"
	"os"
	"sync"
	"testing"
)

// EnvTestConn overrides the container with an existing database.
const EnvTestConn = "MAURO_TEST_PG_CONN"

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

func getOrStartContainer() (string, error) {
	containerOnce.Do(func() {
		ctr, err := StartSimplePostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = ctr.ConnString
	})
	return containerConn, containerErr
}

// RequirePostgres returns a connection string for an integration test.
// Priority: MAURO_TEST_PG_CONN > auto-started container > skip.
// Skipped in short mode.
func RequirePostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	if connString := os.Getenv(EnvTestConn); connString != "" {
		return connString
	}

	connString, err := getOrStartContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", EnvTestConn, err)
	}
	return connString
}
