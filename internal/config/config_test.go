package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Practice.WPM != nil || cfg.Link.Port != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigTables(t *testing.T) {
	path := writeConfig(t, `
[practice]
mode = "Groups"
wpm = 22
weak-factor = 1.5
client-spacing = true

[link]
port = "/dev/ttyUSB0"
baud = 9600

[audio]
volume = 0.25
sidetone = "bounded"

[log]
path = "/tmp/stats.csv"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *cfg.Practice.Mode != "Groups" || *cfg.Practice.WPM != 22 || *cfg.Practice.WeakFactor != 1.5 || !*cfg.Practice.ClientSpacing {
		t.Fatalf("unexpected practice table %+v", cfg.Practice)
	}
	if *cfg.Link.Port != "/dev/ttyUSB0" || *cfg.Link.Baud != 9600 {
		t.Fatalf("unexpected link table %+v", cfg.Link)
	}
	if *cfg.Audio.Volume != 0.25 || *cfg.Audio.Sidetone != "bounded" || cfg.Audio.Local != nil {
		t.Fatalf("unexpected audio table %+v", cfg.Audio)
	}
	if *cfg.Log.Path != "/tmp/stats.csv" || cfg.Log.Journal != nil {
		t.Fatalf("unexpected log table %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[practice]\nspeed = 20\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[practice]\nwpm = 22\ntone = 600\n")
	t.Setenv("CWTRAIN_PRACTICE_WPM", "30")
	t.Setenv("CWTRAIN_AUDIO_LOCAL", "true")
	t.Setenv("CWTRAIN_LINK_PORT", "/dev/ttyACM1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg.Practice.WPM != 30 {
		t.Fatalf("env must override file, got %d", *cfg.Practice.WPM)
	}
	if *cfg.Practice.Tone != 600 {
		t.Fatalf("file value lost, got %d", *cfg.Practice.Tone)
	}
	if cfg.Audio.Local == nil || !*cfg.Audio.Local || *cfg.Link.Port != "/dev/ttyACM1" {
		t.Fatalf("unexpected env values %+v %+v", cfg.Audio, cfg.Link)
	}
	if cfg.Practice.GroupSize != nil {
		t.Fatalf("unset env must leave nil")
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CWTRAIN_PRACTICE_WPM", "fast")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse env") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	cases := map[string]string{
		DefaultConfigPath():   "/cfg/cwtrain/config.toml",
		DefaultLogPath():      "/data/cwtrain/statistics.csv",
		DefaultJournalPath():  "/data/cwtrain/journal.db",
		DefaultStateLogPath(): "/state/cwtrain/cwtrain.log",
	}
	for got, want := range cases {
		if got != filepath.FromSlash(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
