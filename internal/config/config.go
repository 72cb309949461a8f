// Package config loads prosecheck settings from defaults, a config file,
// .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const AppName = "prosecheck"

// FileNames are searched, in order, in every directory from the start
// directory up to the filesystem root.
var FileNames = []string{"prosecheck.toml", ".prosecheck.toml", "prosecheck.yaml", "prosecheck.yml"}

type Config struct {
	Engine EngineConfig `toml:"engine" yaml:"engine"`
	Check  CheckConfig  `toml:"check" yaml:"check"`
	LSP    LSPConfig    `toml:"lsp" yaml:"lsp"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Log    LogConfig    `toml:"log" yaml:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Warnings lists non-fatal problems such as unknown keys.
	Warnings []string `toml:"-" yaml:"-"`
}

type EngineConfig struct {
	URL          string        `toml:"url" yaml:"url"`
	Command      []string      `toml:"command" yaml:"command"`
	ReadyMarker  string        `toml:"ready_marker" yaml:"ready_marker"`
	StartTimeout time.Duration `toml:"start_timeout" yaml:"start_timeout"`
	Username     string        `toml:"username" yaml:"username"`
	APIKey       string        `toml:"api_key" yaml:"api_key"`
}

type CheckConfig struct {
	Language       string   `toml:"language" yaml:"language"`
	MotherTongue   string   `toml:"mother_tongue" yaml:"mother_tongue"`
	DisabledRules  []string `toml:"disabled_rules" yaml:"disabled_rules"`
	EnabledRules   []string `toml:"enabled_rules" yaml:"enabled_rules"`
	Level          string   `toml:"level" yaml:"level"`
	MaxSuggestions int      `toml:"max_suggestions" yaml:"max_suggestions"`
}

type LSPConfig struct {
	DebounceMs int `toml:"debounce_ms" yaml:"debounce_ms"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	Entries int  `toml:"entries" yaml:"entries"`
	Disk    bool `toml:"disk" yaml:"disk"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			URL:          "http://localhost:8081",
			Command:      []string{"languagetool", "--http"},
			ReadyMarker:  "Server started",
			StartTimeout: 60 * time.Second,
		},
		Check: CheckConfig{
			Language:       "auto",
			DisabledRules:  []string{"WHITESPACE_RULE", "EN_QUOTES"},
			MaxSuggestions: 8,
		},
		LSP:   LSPConfig{DebounceMs: 500},
		Cache: CacheConfig{Enabled: true, Entries: 256, Disk: true},
		Log:   LogConfig{Level: "info"},
	}
}

// Debounce returns the LSP debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.LSP.DebounceMs) * time.Millisecond
}

// Load builds the effective configuration for startDir: defaults, then the
// first config file found (explicit path wins), then .env and environment.
func Load(startDir, explicitPath string) (*Config, error) {
	cfg := Default()
	path := explicitPath
	if path == "" {
		found, err := Find(startDir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	_ = godotenv.Load(filepath.Join(startDirOrDot(startDir), ".env"))
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path on top of the defaults without consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the nearest config file at or above startDir, falling back to
// the user config directory. It returns "" when none exists.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDirOrDot(startDir))
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if base, err := os.UserConfigDir(); err == nil {
		for _, name := range []string{"config.toml", "config.yaml"} {
			candidate := filepath.Join(base, AppName, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		for _, key := range meta.Undecoded() {
			c.Warnings = append(c.Warnings, fmt.Sprintf("%s: unrecognized key %q", path, key.String()))
		}
	}
	c.Path = path
	return nil
}

// ApplyEnv overrides settings from PROSECHECK_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PROSECHECK_LT_URL"); ok && v != "" {
		c.Engine.URL = v
	}
	if v, ok := lookup("PROSECHECK_LT_USERNAME"); ok {
		c.Engine.Username = v
	}
	if v, ok := lookup("PROSECHECK_LT_API_KEY"); ok {
		c.Engine.APIKey = v
	}
	if v, ok := lookup("PROSECHECK_LANGUAGE"); ok && v != "" {
		c.Check.Language = v
	}
	if v, ok := lookup("PROSECHECK_DISABLED_RULES"); ok {
		c.Check.DisabledRules = SplitList(v)
	}
	if v, ok := lookup("PROSECHECK_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("PROSECHECK_CACHE"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PROSECHECK_CACHE: %w", err)
		}
		c.Cache.Enabled = enabled
	}
	return nil
}

// Validate rejects unusable values.
func (c *Config) Validate() error {
	if err := ValidateLanguage(c.Check.Language); err != nil {
		return err
	}
	if c.Check.MotherTongue != "" {
		if err := ValidateLanguage(c.Check.MotherTongue); err != nil {
			return fmt.Errorf("mother_tongue: %w", err)
		}
	}
	if c.Check.MaxSuggestions < 0 {
		return fmt.Errorf("max_suggestions must not be negative")
	}
	if c.LSP.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}
	switch c.Check.Level {
	case "", "default", "picky":
	default:
		return fmt.Errorf("level must be \"default\" or \"picky\", got %q", c.Check.Level)
	}
	return nil
}

// ValidateLanguage accepts "auto" or a BCP 47 tag.
func ValidateLanguage(code string) error {
	if code == "" || code == "auto" {
		return nil
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid language %q: %w", code, err)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func startDirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
