// Package config loads planinfo settings from an optional YAML file and
// FFTPLAN_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cwbudde/algo-dft/dft/engine"
)

// EnvPrefix prefixes environment overrides. Nested keys are joined with
// "__", e.g. FFTPLAN_ENGINE__BACKEND.
const EnvPrefix = "FFTPLAN_"

// Backend names.
const (
	BackendGonum   = "gonum"
	BackendAlgoFFT = "algofft"
)

// EngineConfig selects and tunes the transform engine.
type EngineConfig struct {
	Backend   string `koanf:"backend"`   // gonum|algofft
	Effort    string `koanf:"effort"`    // estimate|measure|patient
	Alignment int    `koanf:"alignment"` // bytes; 0 = detect
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug|info|warn|error
	Format string `koanf:"format"` // json|console
}

// Config is the merged configuration.
type Config struct {
	Engine EngineConfig `koanf:"engine"`
	Log    LogConfig    `koanf:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	var c Config
	applyDefaults(&c)
	return c
}

// Load merges the YAML file at path (skipped if path is empty or missing)
// with FFTPLAN_ environment variables, applies defaults and validates.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps FFTPLAN_ENGINE__BACKEND to engine.backend.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func applyDefaults(c *Config) {
	if c.Engine.Backend == "" {
		c.Engine.Backend = BackendGonum
	}
	if c.Engine.Effort == "" {
		c.Engine.Effort = engine.EffortEstimate.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Engine.Backend {
	case BackendGonum, BackendAlgoFFT:
	default:
		return fmt.Errorf("config: unknown engine.backend %q (want %s or %s)", c.Engine.Backend, BackendGonum, BackendAlgoFFT)
	}
	if _, err := engine.ParseEffort(c.Engine.Effort); err != nil {
		return fmt.Errorf("config: engine.effort: %w", err)
	}
	if a := c.Engine.Alignment; a < 0 || (a != 0 && a&(a-1) != 0) {
		return fmt.Errorf("config: engine.alignment %d is not a power of two", a)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Effort returns the parsed planning effort.
func (c Config) Effort() engine.Effort {
	e, _ := engine.ParseEffort(c.Engine.Effort)
	return e
}
