// Package config loads symtool configuration from symtab.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/symtab/symbol"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "SYMTAB_CONFIG"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "symtab.yaml"

// Normalization modes.
const (
	NormalizeNone  = "none"
	NormalizeNFC   = "nfc"
	NormalizeLower = "lower"
)

// Config is the contents of symtab.yaml.
type Config struct {
	// Normalize selects the registry normalizer: none, nfc or lower.
	Normalize string `yaml:"normalize"`

	// StrictInit makes generated tables panic when a site is read before
	// registration. A manifest's own strict field overrides it.
	StrictInit bool `yaml:"strict_init"`

	// Catalog is the SQLite catalog path used when --db is not given.
	Catalog string `yaml:"catalog"`

	// Manifests lists glob patterns of symbol manifests.
	Manifests []string `yaml:"manifests"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Normalize: NormalizeNone,
		LogLevel:  "info",
	}
}

// Parse decodes data on top of Default and validates the result. Unknown keys
// are errors. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustParse is like Parse but panics on error.
func MustParse(data []byte) *Config {
	cfg, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve finds and loads the configuration. The explicit flagPath wins, then
// $SYMTAB_CONFIG, then symtab.yaml in the working directory. With none of
// them present it returns Default and an empty path.
func Resolve(flagPath string) (*Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return Default(), "", nil
		}
		path = DefaultFile
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Normalize {
	case NormalizeNone, NormalizeNFC, NormalizeLower:
	default:
		return fmt.Errorf("config: normalize must be one of none, nfc, lower; got %q", c.Normalize)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, m := range c.Manifests {
		if strings.TrimSpace(m) == "" {
			return errors.New("config: empty manifest pattern")
		}
	}
	return nil
}

// Normalizer returns the configured normalizer, or nil for none.
func (c *Config) Normalizer() symbol.Normalizer {
	switch c.Normalize {
	case NormalizeNFC:
		return symbol.NFC
	case NormalizeLower:
		return symbol.FoldLower
	default:
		return nil
	}
}

// RegistryOptions converts the configuration into registry options.
func (c *Config) RegistryOptions(logger *slog.Logger) []symbol.Option {
	var opts []symbol.Option
	if n := c.Normalizer(); n != nil {
		opts = append(opts, symbol.WithNormalizer(n))
	}
	if logger != nil {
		opts = append(opts, symbol.WithLogger(logger))
	}
	return opts
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
	return l, nil
}
