package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/agentran/internal/failure"
)

// isolate points the config search path at an empty directory so a
// developer's own agentran.yaml never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderXAI, cfg.Provider)
	assert.Equal(t, "grok-3-latest", cfg.Model)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.ChunkOverlap)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.Temperatures)
}

func TestLoad_LegacyEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("AI_API_KEY", "secret")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("DEFAULT_MODEL", "gpt-4")
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("LITERARY_TEMPERATURE", "0.9")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.InDelta(t, 0.9, cfg.Temperatures["literary"], 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvironmentWinsOverLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("AI_API_KEY", "legacy")
	t.Setenv("AGENTRAN_API_KEY", "prefixed")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.APIKey)
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "agentran.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: google
api_key: from-file
chunk_size: 2000
workers: 3
timeout: 30s
temperatures:
  Legal: 0.5
`), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 1, "")
	flags.String("model", "", "")
	require.NoError(t, flags.Parse([]string{"--workers", "5"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider, "legacy provider alias")
	assert.Equal(t, "gemini-2.5-flash", cfg.Model, "unset flag keeps provider default")
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, 2000, cfg.ChunkSize)
	assert.Equal(t, 5, cfg.Workers, "flag overrides file")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.5, cfg.Temperatures["legal"], 1e-9)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.APIKey = "k"

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"missing key", func(c *Config) { c.APIKey = "" }, false},
		{"ollama needs no key", func(c *Config) { c.APIKey = ""; c.Provider = ProviderOllama }, true},
		{"vertex needs project", func(c *Config) { c.APIKey = ""; c.Provider = ProviderVertex }, false},
		{"vertex with project", func(c *Config) { c.APIKey = ""; c.Provider = ProviderVertex; c.ProjectID = "p" }, true},
		{"unknown provider", func(c *Config) { c.Provider = "acme" }, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, false},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, false},
		{"overlap not below size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, false},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }, false},
		{"temperature too high", func(c *Config) { c.Temperatures = map[string]float64{"legal": 2.5} }, false},
		{"unknown profile", func(c *Config) { c.Temperatures = map[string]float64{"poetry": 0.5} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Temperatures = map[string]float64{}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrConfiguration)
		})
	}
}
