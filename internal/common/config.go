package common

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// LLMProvider identifies a generation backend.
type LLMProvider string

const (
	// LLMProviderGemini selects the Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude selects the Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// Config represents the application configuration
type Config struct {
	App       AppConfig       `toml:"app"`
	Logging   LoggingConfig   `toml:"logging"`
	Wikipedia WikipediaConfig `toml:"wikipedia"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Claude    ClaudeConfig    `toml:"claude"`
	LLM       LLMConfig       `toml:"llm"`
	Cache     CacheConfig     `toml:"cache"`
}

// AppConfig controls the interactive surface.
type AppConfig struct {
	Interactive bool `toml:"interactive"` // Run the REPL chat loop (false = one-shot via -q)
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                                       // "stdout", "file"
}

// WikipediaConfig tunes the MediaWiki API client.
type WikipediaConfig struct {
	BaseURL    string `toml:"base_url" validate:"required,url"`
	UserAgent  string `toml:"user_agent" validate:"required"`
	Timeout    string `toml:"timeout"`     // Per-request timeout as duration string (default: "15s")
	FetchDelay string `toml:"fetch_delay"` // Minimum spacing between content fetches (default: "500ms")
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for answer generation (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for answer generation (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"` // "gemini" or "claude"
}

// CacheConfig controls the in-memory retrieval result cache.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	TTL        string `toml:"ttl"`         // Entry lifetime as duration string (default: "1h")
	MaxEntries int    `toml:"max_entries"` // Entry cap (default: 100)
}

// NewDefaultConfig returns the built-in defaults, suitable for running
// against English Wikipedia with a Gemini key from the environment.
func NewDefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Interactive: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Wikipedia: WikipediaConfig{
			BaseURL:    "https://en.wikipedia.org/w/api.php",
			UserAgent:  "Rota Automotive Assistant/1.0 (https://github.com/ternarybob/rota)",
			Timeout:    "15s",
			FetchDelay: "500ms",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        "1h",
			MaxEntries: 100,
		},
	}
}

// LoadFromFiles loads configuration from defaults, then each file in order
// (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the structural constraints declared on the config.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"wikipedia.timeout":     c.Wikipedia.Timeout,
		"wikipedia.fetch_delay": c.Wikipedia.FetchDelay,
		"gemini.timeout":        c.Gemini.Timeout,
		"claude.timeout":        c.Claude.Timeout,
		"cache.ttl":             c.Cache.TTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s %q is not a duration: %w", name, value, err)
		}
	}

	return nil
}

// ProviderAPIKey returns the API key for the configured default provider.
func (c *Config) ProviderAPIKey() string {
	if c.LLM.DefaultProvider == LLMProviderClaude {
		return c.Claude.APIKey
	}
	return c.Gemini.APIKey
}

// applyEnvOverrides layers environment variables over the file config.
// Provider keys also accept the vendors' conventional variable names.
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("ROTA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if baseURL := os.Getenv("ROTA_WIKIPEDIA_BASE_URL"); baseURL != "" {
		config.Wikipedia.BaseURL = baseURL
	}
	if userAgent := os.Getenv("ROTA_WIKIPEDIA_USER_AGENT"); userAgent != "" {
		config.Wikipedia.UserAgent = userAgent
	}

	if key := os.Getenv("ROTA_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}

	if key := os.Getenv("ROTA_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}

	if provider := os.Getenv("ROTA_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// DurationOr parses a duration string, falling back when empty or invalid.
func DurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
