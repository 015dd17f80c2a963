// Package config provides the configuration schema and loader for the
// order-intent server.
package config

import "time"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Provider selects the cloud classifier implementation. Empty means no cloud
// classifier; the rule-based source handles everything alone.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// IsValid reports whether p is a recognised cloud provider.
func (p Provider) IsValid() bool {
	return p == ProviderGemini || p == ProviderOpenAI
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Menu   MenuConfig   `yaml:"menu"`
	Cloud  CloudConfig  `yaml:"cloud"`
	Echo   EchoConfig   `yaml:"echo"`
	Match  MatchConfig  `yaml:"match"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// MenuConfig selects the menu catalog.
type MenuConfig struct {
	// CatalogPath is the YAML menu file. Empty uses the compiled-in catalog.
	CatalogPath string `yaml:"catalog_path"`
}

// CloudConfig configures the cloud intent classifier. The rule-based
// classifier always runs as a fallback regardless of these settings.
type CloudConfig struct {
	// Provider selects the classifier implementation. Empty disables the
	// cloud classifier entirely.
	Provider Provider `yaml:"provider"`

	// APIKey authenticates against the provider's API.
	APIKey string `yaml:"api_key"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single classification request.
	Timeout time.Duration `yaml:"timeout"`

	// MinConfidence is the floor below which a cloud answer is discarded in
	// favour of the rule-based fallback.
	MinConfidence float64 `yaml:"min_confidence"`
}

// EchoConfig tunes the self-echo filter. Zero values use the filter's
// built-in defaults.
type EchoConfig struct {
	// Window is how long after playback ends a transcript can still be an
	// echo of it.
	Window time.Duration `yaml:"window"`

	// MinLength is the minimum transcript length, in runes, for substring
	// echo detection.
	MinLength int `yaml:"min_length"`

	// CoverageRatio is the minimum share of the prompt a transcript must
	// cover to count as a substring echo.
	CoverageRatio float64 `yaml:"coverage_ratio"`

	// MatchRatio is the minimum share of the transcript the longest common
	// run must cover to count as a partial echo.
	MatchRatio float64 `yaml:"match_ratio"`
}

// MatchConfig tunes the fuzzy menu matcher. Zero values use the matcher's
// built-in defaults.
type MatchConfig struct {
	// FuzzyTolerance is the minimum edit distance allowed for a fuzzy match.
	FuzzyTolerance int `yaml:"fuzzy_tolerance"`

	// FuzzyLengthRatio scales the allowed edit distance with the menu name
	// length.
	FuzzyLengthRatio float64 `yaml:"fuzzy_length_ratio"`
}
