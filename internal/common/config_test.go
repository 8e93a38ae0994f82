package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rota.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.True(t, config.App.Interactive)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", config.Wikipedia.BaseURL)
	assert.Equal(t, "500ms", config.Wikipedia.FetchDelay)
	assert.Equal(t, "gemini-2.0-flash", config.Gemini.Model)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, 100, config.Cache.MaxEntries)

	require.NoError(t, config.Validate())
}

func TestLoadFromFiles_Override(t *testing.T) {
	path := writeConfigFile(t, `
[app]
interactive = false

[wikipedia]
fetch_delay = "2s"

[llm]
default_provider = "claude"

[cache]
enabled = false
`)

	config, err := LoadFromFiles(path)

	require.NoError(t, err)
	assert.False(t, config.App.Interactive)
	assert.Equal(t, "2s", config.Wikipedia.FetchDelay)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.False(t, config.Cache.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", config.Wikipedia.BaseURL)
	assert.Equal(t, 8192, config.Claude.MaxTokens)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfigFile(t, `
[logging]
level = "debug"

[gemini]
model = "gemini-2.0-flash"
`)
	second := writeConfigFile(t, `
[gemini]
model = "gemini-2.5-pro"
`)

	config, err := LoadFromFiles(first, second)

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", config.Gemini.Model)
	assert.Equal(t, "debug", config.Logging.Level, "earlier file settings survive unless overridden")
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_EmptyPathSkipped(t *testing.T) {
	config, err := LoadFromFiles("")
	require.NoError(t, err)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROTA_LOG_LEVEL", "debug")
	t.Setenv("ROTA_WIKIPEDIA_BASE_URL", "https://de.wikipedia.org/w/api.php")
	t.Setenv("GEMINI_API_KEY", "vendor-key")
	t.Setenv("ROTA_LLM_DEFAULT_PROVIDER", "claude")
	t.Setenv("ROTA_CLAUDE_API_KEY", "claude-key")

	config, err := LoadFromFiles()

	require.NoError(t, err)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "https://de.wikipedia.org/w/api.php", config.Wikipedia.BaseURL)
	assert.Equal(t, "vendor-key", config.Gemini.APIKey)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.Equal(t, "claude-key", config.Claude.APIKey)
}

func TestEnvOverrides_PrefixedKeyBeatsVendorKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "vendor-key")
	t.Setenv("ROTA_GEMINI_API_KEY", "rota-key")

	config, err := LoadFromFiles()

	require.NoError(t, err)
	assert.Equal(t, "rota-key", config.Gemini.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults valid", func(*Config) {}, true},
		{"empty base url", func(c *Config) { c.Wikipedia.BaseURL = "" }, false},
		{"non-url base url", func(c *Config) { c.Wikipedia.BaseURL = "not a url" }, false},
		{"empty user agent", func(c *Config) { c.Wikipedia.UserAgent = "" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, false},
		{"bad provider", func(c *Config) { c.LLM.DefaultProvider = "openai" }, false},
		{"bad fetch delay", func(c *Config) { c.Wikipedia.FetchDelay = "fast" }, false},
		{"bad cache ttl", func(c *Config) { c.Cache.TTL = "1 hour" }, false},
		{"empty durations allowed", func(c *Config) { c.Cache.TTL = ""; c.Gemini.Timeout = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestProviderAPIKey(t *testing.T) {
	config := NewDefaultConfig()
	config.Gemini.APIKey = "g-key"
	config.Claude.APIKey = "c-key"

	assert.Equal(t, "g-key", config.ProviderAPIKey())

	config.LLM.DefaultProvider = LLMProviderClaude
	assert.Equal(t, "c-key", config.ProviderAPIKey())
}

func TestDurationOr(t *testing.T) {
	assert.Equal(t, time.Minute, DurationOr("", time.Minute))
	assert.Equal(t, 15*time.Second, DurationOr("15s", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("not-a-duration", time.Minute))
}
