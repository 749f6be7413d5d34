// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jeranaias/luna-tui/internal/backend"
	"github.com/jeranaias/luna-tui/internal/storage"
	"github.com/jeranaias/luna-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete luna configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Chat    ChatConfig    `toml:"chat"`
	Model   ModelConfig   `toml:"model"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig locates the inference server.
type ServerConfig struct {
	URL string `toml:"url" env:"LUNA_SERVER_URL"`

	// Timeout bounds each request; zero waits indefinitely.
	Timeout time.Duration `toml:"timeout" env:"LUNA_SERVER_TIMEOUT"`
}

// ChatConfig selects how chat requests are built.
type ChatConfig struct {
	// Variant is "history" (send the whole conversation) or "session"
	// (send only the new message and a session ID).
	Variant string `toml:"variant" env:"LUNA_VARIANT"`

	SessionID         string `toml:"session_id" env:"LUNA_SESSION_ID"`
	GenerateSessionID bool   `toml:"generate_session_id" env:"LUNA_GENERATE_SESSION_ID"`
}

// ModelConfig holds model configuration panel defaults.
type ModelConfig struct {
	DefaultPath string `toml:"default_path" env:"LUNA_MODEL_PATH"`

	// SendParams includes n_ctx, n_threads and n_batch in configure requests.
	SendParams bool `toml:"send_params" env:"LUNA_MODEL_SEND_PARAMS"`
	NCtx       int  `toml:"n_ctx" env:"LUNA_MODEL_N_CTX"`
	NThreads   int  `toml:"n_threads" env:"LUNA_MODEL_N_THREADS"`
	NBatch     int  `toml:"n_batch" env:"LUNA_MODEL_N_BATCH"`

	// AfterConfigure is "reload" (re-read history and re-check status) or
	// "poll" (re-check status only).
	AfterConfigure string `toml:"after_configure" env:"LUNA_AFTER_CONFIGURE"`
}

// StorageConfig selects the local store.
type StorageConfig struct {
	Backend string `toml:"backend" env:"LUNA_STORE"`

	// DataDir holds the store and logs. Empty means the config directory.
	DataDir string `toml:"data_dir" env:"LUNA_DATA_DIR"`

	// Watch reloads the transcript when another process changes the store.
	Watch bool `toml:"watch" env:"LUNA_WATCH"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	MinInputHeight int `toml:"min_input_height"`
	MaxInputHeight int `toml:"max_input_height"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" env:"LUNA_LOG_LEVEL"`
}

// What the client does after a successful model configuration.
const (
	AfterReload = "reload"
	AfterPoll   = "poll"
)

// DefaultModelPath is prefilled in the model configuration panel.
const DefaultModelPath = "backend/model/phi-4-Q3_K_S.gguf"

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8000",
		},
		Chat: ChatConfig{
			Variant: backend.VariantHistory,
		},
		Model: ModelConfig{
			DefaultPath:    DefaultModelPath,
			NCtx:           4096,
			NThreads:       4,
			NBatch:         512,
			AfterConfigure: AfterReload,
		},
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Watch:   true,
		},
		UI: UIConfig{
			MinInputHeight: 1,
			MaxInputHeight: 8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the luna configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".luna"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolveDataDir returns the absolute data directory, expanding a leading
// "~/" and falling back to the config directory.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.Storage.DataDir
	if dir == "" {
		return ConfigDir()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from path, or from ~/.luna/config.toml when path
// is empty. A missing default file yields defaults; a missing explicit file
// is an error. .env files and LUNA_* variables are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	LoadEnvFiles(filepath.Join(filepath.Dir(path), ".env"), ".env")

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadEnvFiles loads each existing .env file into the process environment.
// Variables already set are not overwritten.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", p, err)
		}
	}
}

// ApplyEnvOverrides applies LUNA_* environment variables.
//
// Supported environment variables:
//   - LUNA_SERVER_URL, LUNA_SERVER_TIMEOUT
//   - LUNA_VARIANT, LUNA_SESSION_ID, LUNA_GENERATE_SESSION_ID
//   - LUNA_MODEL_PATH, LUNA_MODEL_SEND_PARAMS, LUNA_MODEL_N_CTX,
//     LUNA_MODEL_N_THREADS, LUNA_MODEL_N_BATCH, LUNA_AFTER_CONFIGURE
//   - LUNA_STORE, LUNA_DATA_DIR, LUNA_WATCH
//   - LUNA_LOG_LEVEL
func (c *Config) ApplyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// fillDefaults fills in any values a partial file left empty.
func (c *Config) fillDefaults() {
	d := Default()

	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Chat.Variant == "" {
		c.Chat.Variant = d.Chat.Variant
	}
	if c.Model.DefaultPath == "" {
		c.Model.DefaultPath = d.Model.DefaultPath
	}
	if c.Model.AfterConfigure == "" {
		c.Model.AfterConfigure = d.Model.AfterConfigure
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.UI.MinInputHeight == 0 {
		c.UI.MinInputHeight = d.UI.MinInputHeight
	}
	if c.UI.MaxInputHeight == 0 {
		c.UI.MaxInputHeight = d.UI.MaxInputHeight
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# luna configuration file\n")
	buf.WriteString("# Generated by luna - edit with care\n")
	buf.WriteString("\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.ReplaceFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.URL),
		})
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout", Message: "must not be negative"})
	}

	switch c.Chat.Variant {
	case backend.VariantHistory, backend.VariantSession:
	default:
		errs = append(errs, ValidationError{
			Field:   "chat.variant",
			Message: fmt.Sprintf("invalid variant '%s', must be one of: history, session", c.Chat.Variant),
		})
	}
	if c.Chat.SessionID != "" && c.Chat.GenerateSessionID {
		errs = append(errs, ValidationError{
			Field:   "chat.generate_session_id",
			Message: "cannot be combined with chat.session_id",
		})
	}

	if c.Model.NCtx <= 0 {
		errs = append(errs, ValidationError{Field: "model.n_ctx", Message: "must be positive"})
	}
	if c.Model.NThreads <= 0 {
		errs = append(errs, ValidationError{Field: "model.n_threads", Message: "must be positive"})
	}
	if c.Model.NBatch <= 0 {
		errs = append(errs, ValidationError{Field: "model.n_batch", Message: "must be positive"})
	}
	switch c.Model.AfterConfigure {
	case AfterReload, AfterPoll:
	default:
		errs = append(errs, ValidationError{
			Field:   "model.after_configure",
			Message: fmt.Sprintf("invalid value '%s', must be one of: reload, poll", c.Model.AfterConfigure),
		})
	}

	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite", c.Storage.Backend),
		})
	}

	if c.UI.MinInputHeight < 1 {
		errs = append(errs, ValidationError{Field: "ui.min_input_height", Message: "must be at least 1"})
	}
	if c.UI.MaxInputHeight < c.UI.MinInputHeight {
		errs = append(errs, ValidationError{Field: "ui.max_input_height", Message: "must not be less than ui.min_input_height"})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve ValidateErrors
	return errors.As(err, &ve)
}
