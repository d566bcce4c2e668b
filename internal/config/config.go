package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables read by Resolve.
const (
	EnvAPIURL           = "MAURO_API_URL"
	EnvAPIKey           = "MAURO_API_KEY"
	EnvDefaultNamespace = "MAURO_DEFAULT_NAMESPACE"
)

type RetryConfig struct {
	MaxAttempts  *int   `yaml:"max_attempts"`
	InitialDelay string `yaml:"initial_delay"`
	MaxDelay     string `yaml:"max_delay"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// ProjectConfig mirrors mauro.yaml. The API key is deliberately absent.
type ProjectConfig struct {
	APIURL           string      `yaml:"api_url"`
	DefaultNamespace string      `yaml:"default_namespace"`
	DeleteOnNull     bool        `yaml:"delete_on_null"`
	Extension        string      `yaml:"extension"`
	Timeout          string      `yaml:"timeout"`
	Retry            RetryConfig `yaml:"retry"`
	Log              LogConfig   `yaml:"log"`
}

const ConfigFileName = "mauro.yaml"

// Load reads mauro.yaml. path is either the file itself or a directory containing it.
func Load(path string) (*ProjectConfig, error) {
	configPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		configPath = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Settings are the effective values of one run before command-line flags.
type Settings struct {
	APIURL           string
	APIKey           string
	DefaultNamespace string
	DeleteOnNull     bool
	Extension        string
	Timeout          time.Duration
	MaxAttempts      int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	LogLevel         string
	LogPath          string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Extension:    mauro.DefaultExtension,
		Timeout:      mauro.DefaultHTTPTimeout,
		MaxAttempts:  mauro.DefaultRetryMaxAttempts,
		InitialDelay: mauro.DefaultRetryInitialDelay,
		MaxDelay:     mauro.DefaultRetryMaxDelay,
		LogLevel:     "INFO",
		LogPath:      mauro.DefaultLogPath,
	}
}

// Resolve layers defaults, then cfg (may be nil), then the environment.
// getenv is usually os.Getenv.
func Resolve(cfg *ProjectConfig, getenv func(string) string) (Settings, error) {
	s := Defaults()

	if cfg != nil {
		if err := s.applyFile(cfg); err != nil {
			return Settings{}, err
		}
	}

	if v := getenv(EnvAPIURL); v != "" {
		s.APIURL = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		s.APIKey = v
	}
	if v := getenv(EnvDefaultNamespace); v != "" {
		s.DefaultNamespace = v
	}
	return s, nil
}

func (s *Settings) applyFile(cfg *ProjectConfig) error {
	if cfg.APIURL != "" {
		s.APIURL = cfg.APIURL
	}
	if cfg.DefaultNamespace != "" {
		s.DefaultNamespace = cfg.DefaultNamespace
	}
	s.DeleteOnNull = cfg.DeleteOnNull
	if cfg.Extension != "" {
		s.Extension = cfg.Extension
	}
	if cfg.Log.Level != "" {
		s.LogLevel = cfg.Log.Level
	}
	if cfg.Log.Path != "" {
		s.LogPath = cfg.Log.Path
	}
	if cfg.Retry.MaxAttempts != nil {
		if *cfg.Retry.MaxAttempts < 0 {
			return &mauro.ConfigError{Field: "retry.max_attempts", Value: fmt.Sprint(*cfg.Retry.MaxAttempts), Reason: "must not be negative"}
		}
		s.MaxAttempts = *cfg.Retry.MaxAttempts
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"timeout", cfg.Timeout, &s.Timeout},
		{"retry.initial_delay", cfg.Retry.InitialDelay, &s.InitialDelay},
		{"retry.max_delay", cfg.Retry.MaxDelay, &s.MaxDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil || parsed <= 0 {
			return &mauro.ConfigError{Field: d.field, Value: d.raw, Reason: "must be a positive duration such as 30s"}
		}
		*d.dst = parsed
	}
	return nil
}
