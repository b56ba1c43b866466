package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[entry]
mode = "pins"
ball = "Phaze II"

[stats]
exclude-practice = true
curve-window = 5

[offload]
stats-timeout = "45s"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Entry.Mode == nil || *cfg.Entry.Mode != "pins" {
		t.Fatalf("unexpected mode %v", cfg.Entry.Mode)
	}
	if cfg.Entry.League != nil || cfg.Stats.Last != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if cfg.Stats.ExcludePractice == nil || !*cfg.Stats.ExcludePractice || *cfg.Stats.CurveWindow != 5 {
		t.Fatalf("unexpected stats config %+v", cfg.Stats)
	}
	statsTimeout, processTimeout, err := cfg.Offload.Timeouts()
	if err != nil || statsTimeout != 45*time.Second || processTimeout != 0 {
		t.Fatalf("unexpected timeouts %v %v %v", statsTimeout, processTimeout, err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if cfg.Entry.Mode != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		"[entry]\nmode = \"keyboard\"\n",
		"[offload]\nprocess-timeout = \"soon\"\n",
		"[offload]\nstats-timeout = \"-1s\"\n",
		"[stats\n",
	} {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("expected an error for %q", body)
		}
	}
}

func TestTemplateParses(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, Template)); err != nil {
		t.Fatalf("template must parse: %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "tenpin", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "tenpin", "tenpin.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
