package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMinConfidence is the cloud-answer confidence floor applied when the
// config leaves it unset.
const DefaultMinConfidence = 0.5

// Default returns the configuration used when no config file is given: a
// local rule-only server on :8080 with the compiled-in menu.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   LogInfo,
		},
		Cloud: CloudConfig{
			Timeout:       5 * time.Second,
			MinConfidence: DefaultMinConfidence,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Cloud.Provider != "" && !cfg.Cloud.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("cloud.provider %q is invalid; valid values: gemini, openai", cfg.Cloud.Provider))
	}
	if cfg.Cloud.Provider != "" && cfg.Cloud.APIKey == "" {
		errs = append(errs, fmt.Errorf("cloud.api_key is required when cloud.provider is set"))
	}
	if cfg.Cloud.Timeout < 0 {
		errs = append(errs, fmt.Errorf("cloud.timeout %v is negative", cfg.Cloud.Timeout))
	}
	if cfg.Cloud.MinConfidence < 0 || cfg.Cloud.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("cloud.min_confidence %.2f is out of range [0, 1]", cfg.Cloud.MinConfidence))
	}

	if cfg.Echo.Window < 0 {
		errs = append(errs, fmt.Errorf("echo.window %v is negative", cfg.Echo.Window))
	}
	if cfg.Echo.MinLength < 0 {
		errs = append(errs, fmt.Errorf("echo.min_length %d is negative", cfg.Echo.MinLength))
	}
	if cfg.Echo.CoverageRatio < 0 || cfg.Echo.CoverageRatio > 1 {
		errs = append(errs, fmt.Errorf("echo.coverage_ratio %.2f is out of range [0, 1]", cfg.Echo.CoverageRatio))
	}
	if cfg.Echo.MatchRatio < 0 || cfg.Echo.MatchRatio > 1 {
		errs = append(errs, fmt.Errorf("echo.match_ratio %.2f is out of range [0, 1]", cfg.Echo.MatchRatio))
	}

	if cfg.Match.FuzzyTolerance < 0 {
		errs = append(errs, fmt.Errorf("match.fuzzy_tolerance %d is negative", cfg.Match.FuzzyTolerance))
	}
	if cfg.Match.FuzzyLengthRatio < 0 || cfg.Match.FuzzyLengthRatio > 1 {
		errs = append(errs, fmt.Errorf("match.fuzzy_length_ratio %.2f is out of range [0, 1]", cfg.Match.FuzzyLengthRatio))
	}

	return errors.Join(errs...)
}
