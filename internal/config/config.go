// Package config loads the engine configuration from flags, environment,
// and an optional config file through viper, and validates it before any
// session is created.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/agentran/internal/failure"
)

// Providers recognised by the model gateway factory.
const (
	ProviderXAI        = "xai"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
	ProviderVertex     = "vertex"
)

const (
	DefaultProvider     = ProviderXAI
	DefaultChunkSize    = 4000
	DefaultChunkOverlap = 200
	DefaultMaxFileSize  = 25 * 1024 * 1024
	DefaultTimeout      = 120 * time.Second
	DefaultMaxTokens    = 4000
	DefaultDBPath       = "./data/agentran.db"
	DefaultRegion       = "us-central1"
)

// DefaultModels lists the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderXAI:        "grok-3-latest",
	ProviderOpenAI:     "gpt-4o",
	ProviderOpenRouter: "google/gemini-2.5-flash",
	ProviderAnthropic:  "claude-3-5-sonnet-latest",
	ProviderOllama:     "llama3.1:8b",
	ProviderGemini:     "gemini-2.5-flash",
	ProviderVertex:     "gemini-2.5-flash",
}

// providerAliases maps legacy provider names onto the canonical ones.
var providerAliases = map[string]string{
	"google": ProviderGemini,
	"grok":   ProviderXAI,
}

// ProfileKeys are the temperature override keys, one per specialist profile.
// Each also reads the legacy <KEY>_TEMPERATURE environment variable.
var ProfileKeys = []string{
	"general", "literary", "legal", "business", "technical",
	"medical", "news", "academic", "marketing", "master",
}

// Config is the explicit engine configuration. It is built once by Load and
// handed to constructors; nothing reads the process environment afterwards.
type Config struct {
	Provider          string             `mapstructure:"provider" json:"provider"`
	Model             string             `mapstructure:"model" json:"model"`
	APIKey            string             `mapstructure:"api_key" json:"-"`
	BaseURL           string             `mapstructure:"base_url" json:"base_url"`
	Credentials       string             `mapstructure:"credentials" json:"credentials"`
	ProjectID         string             `mapstructure:"project_id" json:"project_id"`
	Region            string             `mapstructure:"region" json:"region"`
	Timeout           time.Duration      `mapstructure:"timeout" json:"timeout"`
	MaxTokens         int                `mapstructure:"max_tokens" json:"max_tokens"`
	RequestsPerMinute int                `mapstructure:"requests_per_minute" json:"requests_per_minute"`
	ChunkSize         int                `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap      int                `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	MaxFileSize       int64              `mapstructure:"max_file_size" json:"max_file_size"`
	Workers           int                `mapstructure:"workers" json:"workers"`
	Temperatures      map[string]float64 `mapstructure:"temperatures" json:"temperatures"`
	DBPath            string             `mapstructure:"db_path" json:"db_path"`
	LogLevel          string             `mapstructure:"log_level" json:"log_level"`
}

// Default returns a configuration with every default applied and no
// credentials. Tests start from it.
func Default() Config {
	return Config{
		Provider:     DefaultProvider,
		Model:        DefaultModels[DefaultProvider],
		Region:       DefaultRegion,
		Timeout:      DefaultTimeout,
		MaxTokens:    DefaultMaxTokens,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MaxFileSize:  DefaultMaxFileSize,
		Workers:      1,
		Temperatures: map[string]float64{},
		DBPath:       DefaultDBPath,
		LogLevel:     "info",
	}
}

// legacyEnv lists the unprefixed environment names honoured for each key.
var legacyEnv = map[string]string{
	"api_key":       "AI_API_KEY",
	"provider":      "AI_PROVIDER",
	"model":         "DEFAULT_MODEL",
	"chunk_size":    "CHUNK_SIZE",
	"chunk_overlap": "CHUNK_OVERLAP",
	"max_file_size": "MAX_FILE_SIZE",
	"project_id":    "GOOGLE_CLOUD_PROJECT",
	"credentials":   "GOOGLE_APPLICATION_CREDENTIALS",
}

// Load resolves the configuration. Precedence: flags > environment >
// config file > defaults. configFile may be empty, in which case
// agentran.{yaml,toml,json} is searched in "." and $HOME/.config/agentran.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	def := Default()

	v.SetDefault("provider", def.Provider)
	v.SetDefault("region", def.Region)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("max_tokens", def.MaxTokens)
	v.SetDefault("chunk_size", def.ChunkSize)
	v.SetDefault("chunk_overlap", def.ChunkOverlap)
	v.SetDefault("max_file_size", def.MaxFileSize)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("AGENTRAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, "AGENTRAN_"+strings.ToUpper(key), legacy); err != nil {
			return Config{}, failure.New(failure.Configuration, "bind env "+key, err)
		}
	}
	for _, p := range ProfileKeys {
		key := "temperatures." + p
		env := strings.ToUpper(p) + "_TEMPERATURE"
		if err := v.BindEnv(key, "AGENTRAN_TEMPERATURES_"+strings.ToUpper(p), env); err != nil {
			return Config{}, failure.New(failure.Configuration, "bind env "+key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("agentran")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "agentran"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, failure.New(failure.Configuration, "read config", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, failure.New(failure.Configuration, "decode config", err)
	}
	cfg.normalize()
	return cfg, nil
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"provider":   "provider",
	"model":      "model",
	"api-key":    "api_key",
	"base-url":   "base_url",
	"project":    "project_id",
	"region":     "region",
	"timeout":    "timeout",
	"rpm":        "requests_per_minute",
	"chunk-size": "chunk_size",
	"overlap":    "chunk_overlap",
	"max-size":   "max_file_size",
	"workers":    "workers",
	"db":         "db_path",
	"log-level":  "log_level",
	"max-tokens": "max_tokens",

	"credentials": "credentials",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return failure.New(failure.Configuration, "bind flag --"+name, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if alias, ok := providerAliases[c.Provider]; ok {
		c.Provider = alias
	}
	if c.Model == "" {
		c.Model = DefaultModels[c.Provider]
	}
	if c.Temperatures == nil {
		c.Temperatures = map[string]float64{}
	}
	lowered := make(map[string]float64, len(c.Temperatures))
	for k, t := range c.Temperatures {
		lowered[strings.ToLower(k)] = t
	}
	c.Temperatures = lowered
}

// Validate reports the first configuration problem as a Configuration failure.
func (c Config) Validate() error {
	if _, ok := DefaultModels[c.Provider]; !ok {
		return failure.Newf(failure.Configuration, "validate config", "unsupported provider %q", c.Provider)
	}
	if c.APIKey == "" && c.Provider != ProviderOllama && c.Provider != ProviderVertex {
		return failure.Newf(failure.Configuration, "validate config", "API key required for provider %q (set AI_API_KEY or AGENTRAN_API_KEY)", c.Provider)
	}
	if c.Provider == ProviderVertex && c.ProjectID == "" {
		return failure.Newf(failure.Configuration, "validate config", "project ID required for provider %q", c.Provider)
	}
	if c.ChunkSize <= 0 {
		return failure.Newf(failure.Configuration, "validate config", "chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return failure.Newf(failure.Configuration, "validate config", "chunk overlap must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.MaxFileSize <= 0 {
		return failure.Newf(failure.Configuration, "validate config", "max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.Workers < 1 {
		return failure.Newf(failure.Configuration, "validate config", "workers must be at least 1, got %d", c.Workers)
	}
	if c.RequestsPerMinute < 0 {
		return failure.Newf(failure.Configuration, "validate config", "requests per minute must not be negative, got %d", c.RequestsPerMinute)
	}
	for key, t := range c.Temperatures {
		if !isProfileKey(key) {
			return failure.Newf(failure.Configuration, "validate config", "unknown profile %q in temperatures", key)
		}
		if t < 0 || t > 2 {
			return failure.Newf(failure.Configuration, "validate config", "temperature for %q must be in [0, 2], got %g", key, t)
		}
	}
	return nil
}

func isProfileKey(key string) bool {
	for _, p := range ProfileKeys {
		if p == key {
			return true
		}
	}
	return false
}

// String renders the non-secret settings for logs.
func (c Config) String() string {
	return fmt.Sprintf("provider=%s model=%s chunk=%d/%d workers=%d", c.Provider, c.Model, c.ChunkSize, c.ChunkOverlap, c.Workers)
}
