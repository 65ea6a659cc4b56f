/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/valpere/agentran/internal/config"
	"github.com/valpere/agentran/internal/gateway"
	"github.com/valpere/agentran/internal/store"
)

// addConfigFlags registers the flags that override configuration keys.
func addConfigFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("provider", def.Provider, "AI provider: xai, openai, openrouter, anthropic, ollama, gemini, vertex")
	fs.String("model", "", "Model name (provider default if empty)")
	fs.String("api-key", "", "API key for the provider (or AI_API_KEY)")
	fs.String("base-url", "", "Override the provider endpoint")
	fs.String("project", "", "Google Cloud project ID (vertex)")
	fs.String("credentials", "", "Google Cloud credentials file (vertex, --detect cloud)")
	fs.String("region", def.Region, "Google Cloud region (vertex)")
	fs.Duration("timeout", def.Timeout, "Timeout for a single model call")
	fs.Int("max-tokens", def.MaxTokens, "Maximum tokens per model reply")
	fs.Int("rpm", 0, "Maximum model calls per minute (0 = unlimited)")
	fs.Int("chunk-size", def.ChunkSize, "Maximum chunk length in characters")
	fs.Int("overlap", def.ChunkOverlap, "Characters shared by consecutive chunks")
	fs.Int64("max-size", def.MaxFileSize, "Maximum input file size in bytes")
	fs.Int("workers", def.Workers, "Chunks translated in parallel")
	addDBFlag(fs)
	fs.String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
}

func addDBFlag(fs *pflag.FlagSet) {
	fs.String("db", config.DefaultDBPath, "Database path for session history and glossary")
}

// loadConfig resolves the configuration for flags and sets up the logger.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return config.Config{}, err
	}

	l, err := newLogger(verbose, cfg.LogLevel)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))
	return cfg, nil
}

func newLogger(verbose bool, level string) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// buildGateway creates the model gateway. The returned func releases it.
func buildGateway(ctx context.Context, cfg config.Config) (gateway.Gateway, func(), error) {
	gw, err := gateway.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := gw.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close gateway", zap.Error(err))
			}
		}
	}
	return gw, release, nil
}

// openStore opens the database, creating its directory first.
func openStore(dbPath string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openConfiguredStore opens the database at the configured db_path, so the
// --db flag, AGENTRAN_DB_PATH and the config file all apply.
func openConfiguredStore(flags *pflag.FlagSet) (*store.Store, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return openStore(cfg.DBPath)
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(10 * time.Millisecond).String()
}
