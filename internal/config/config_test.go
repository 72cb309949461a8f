package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Check.Language != "auto" || cfg.Check.MaxSuggestions != 8 {
		t.Fatalf("unexpected check defaults %+v", cfg.Check)
	}
	if !reflect.DeepEqual(cfg.Check.DisabledRules, []string{"WHITESPACE_RULE", "EN_QUOTES"}) {
		t.Fatalf("disabled rules %v", cfg.Check.DisabledRules)
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Fatalf("debounce %v", cfg.Debounce())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadTOMLSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "prosecheck.toml"), `
[check]
language = "en-GB"
disabled_rules = ["OXFORD_SPELLING_Z_NOT_S"]

[lsp]
debounce_ms = 250

[engine]
start_timeout = "5s"
unknown = 1
`)
	nested := filepath.Join(root, "docs", "guide")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != filepath.Join(root, "prosecheck.toml") {
		t.Fatalf("path = %s", cfg.Path)
	}
	if cfg.Check.Language != "en-GB" || cfg.LSP.DebounceMs != 250 || cfg.Engine.StartTimeout != 5*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Check.MaxSuggestions != 8 {
		t.Fatalf("defaults lost: %+v", cfg.Check)
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("warnings = %v", cfg.Warnings)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prosecheck.yaml")
	writeFile(t, path, "check:\n  language: de-DE\n  max_suggestions: 3\ncache:\n  enabled: false\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Check.Language != "de-DE" || cfg.Check.MaxSuggestions != 3 || cfg.Cache.Enabled {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"PROSECHECK_LT_URL":         "http://lt:8010",
		"PROSECHECK_LANGUAGE":       "fr",
		"PROSECHECK_DISABLED_RULES": "A, B,,C",
		"PROSECHECK_CACHE":          "off",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for PROSECHECK_CACHE=off")
	}
	env["PROSECHECK_CACHE"] = "false"
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Engine.URL != "http://lt:8010" || cfg.Check.Language != "fr" || cfg.Cache.Enabled {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Check.DisabledRules, []string{"A", "B", "C"}) {
		t.Fatalf("rules %v", cfg.Check.DisabledRules)
	}
}

func TestValidateLanguage(t *testing.T) {
	for _, ok := range []string{"", "auto", "en-US", "de", "pt-BR"} {
		if err := ValidateLanguage(ok); err != nil {
			t.Fatalf("%q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"english please", "x_y_z!"} {
		if err := ValidateLanguage(bad); err == nil {
			t.Fatalf("%q accepted", bad)
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prosecheck.toml")
	writeFile(t, path, "[check]\nlanguage = \"en-US\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, nil, func(c *Config) { got <- c }) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Check.Language != "nl" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			writeFile(t, path, "[check]\nlanguage = \"nl\"\n")
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}
