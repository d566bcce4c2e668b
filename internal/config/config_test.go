package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

func noEnv(string) string { return "" }

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `api_url: https://mauro.example.org/api
default_namespace: org.gov
delete_on_null: true
extension: .tsv
timeout: 10s
retry:
  max_attempts: 4
  initial_delay: 50ms
  max_delay: 1s
log:
  level: DEBUG
  path: /var/log/mauro
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://mauro.example.org/api", cfg.APIURL)
	assert.Equal(t, "org.gov", cfg.DefaultNamespace)
	assert.True(t, cfg.DeleteOnNull)
	assert.Equal(t, ".tsv", cfg.Extension)
	assert.Equal(t, "10s", cfg.Timeout)
	require.NotNil(t, cfg.Retry.MaxAttempts)
	assert.Equal(t, 4, *cfg.Retry.MaxAttempts)
	assert.Equal(t, "DEBUG", cfg.Log.Level)

	s, err := Resolve(cfg, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, s.Timeout)
	assert.Equal(t, 4, s.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, s.InitialDelay)
	assert.Equal(t, time.Second, s.MaxDelay)
	assert.Equal(t, "/var/log/mauro", s.LogPath)
	assert.Empty(t, s.APIKey)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_namespace: temp\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "temp", cfg.DefaultNamespace)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("retry: [\n"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_APIKeyIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("api_key: 123e4567-e89b-12d3-a456-426614174000\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	s, err := Resolve(cfg, noEnv)
	require.NoError(t, err)
	assert.Empty(t, s.APIKey)
}

func TestResolve_Defaults(t *testing.T) {
	s, err := Resolve(nil, noEnv)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, mauro.DefaultRetryMaxAttempts, s.MaxAttempts)
	assert.Equal(t, "logs/", s.LogPath)
}

func TestResolve_EnvironmentOverridesFile(t *testing.T) {
	cfg := &ProjectConfig{APIURL: "https://file/api", DefaultNamespace: "file"}
	env := map[string]string{
		EnvAPIURL: "https://env/api",
		EnvAPIKey: "123e4567-e89b-12d3-a456-426614174000",
	}

	s, err := Resolve(cfg, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "https://env/api", s.APIURL)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", s.APIKey)
	assert.Equal(t, "file", s.DefaultNamespace)
}

func TestResolve_InvalidValues(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		cfg  ProjectConfig
	}{
		{"bad timeout", ProjectConfig{Timeout: "soon"}},
		{"zero delay", ProjectConfig{Retry: RetryConfig{InitialDelay: "0s"}}},
		{"negative attempts", ProjectConfig{Retry: RetryConfig{MaxAttempts: &negative}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, err := Resolve(&cfg, noEnv)
			assert.ErrorIs(t, err, mauro.ErrConfig)
		})
	}
}
