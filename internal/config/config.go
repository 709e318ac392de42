// Package config loads sidecar settings and resolves application directories.
package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sidecar/internal/apperr"
)

//go:embed schema.cue
var schemaCUE string

// Config holds settings loaded from config.yaml.
type Config struct {
	// Database is the SQLite file path. Empty means DefaultDatabasePath.
	Database string `yaml:"database" json:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// StateLength is the length of generated OAuth state tokens.
	StateLength int `yaml:"state_length" json:"state_length"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		StateLength: 32,
	}
}

// Load reads a YAML config file from path over the defaults. If the file
// does not exist, it returns Default() and no error. The result is checked
// against the embedded CUE schema.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, apperr.Wrap(apperr.CodeInvalidState, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.Newf(apperr.CodeSerialization, "parse %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate unifies the config with the #Config schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return apperr.Newf(apperr.CodeInvalidState, "compile config schema: %v", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.Encode(c)
	if err := v.Err(); err != nil {
		return apperr.Newf(apperr.CodeSerialization, "encode config: %v", err)
	}

	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return apperr.Newf(apperr.CodeSerialization, "invalid config: %v", err)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
