package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cubesculpt.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
runtime: replay
session:
  far: 50
supervisor:
  backoff: 2s
replay:
  script: scripts/demo.yaml
desktop:
  eye_width: 320
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Runtime != RuntimeReplay || cfg.Replay.Script != "scripts/demo.yaml" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Session.Far != 50 || cfg.Session.Near != 0.1 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Supervisor.Backoff != 2*time.Second {
		t.Errorf("backoff = %v", cfg.Supervisor.Backoff)
	}
	if cfg.Desktop.EyeWidth != 320 || cfg.Desktop.EyeHeight != 640 || cfg.Replay.Hz != 90 {
		t.Errorf("defaults not kept: %+v", cfg.Desktop)
	}
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	path := writeConfig(t, `
session:
  far: 0
supervisor:
  backoff: 0s
desktop:
  show_fps: false
  show_log: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.Far != 0 || cfg.Session.Near != 0.1 {
		t.Errorf("session = %+v, want infinite far plane", cfg.Session)
	}
	if cfg.Supervisor.Backoff != 0 {
		t.Errorf("backoff = %v, want 0", cfg.Supervisor.Backoff)
	}
	if cfg.Desktop.ShowFPS || cfg.Desktop.ShowLog {
		t.Errorf("overlays = fps %v log %v, want both off", cfg.Desktop.ShowFPS, cfg.Desktop.ShowLog)
	}
	if cfg.Desktop.Width != 1280 {
		t.Errorf("width = %d, want default", cfg.Desktop.Width)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":   "runtime: [",
		"runtime":  "runtime: openxr",
		"near":     "session: {near: -1}",
		"attempts": "supervisor: {max_attempts: -2}",
	} {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: loaded", name)
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cubesculpt.yaml")
	want := Default()
	want.Runtime = RuntimeReplay
	want.Supervisor.MaxAttempts = 3
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRuntime:  "replay",
		EnvScript:   "run.yaml",
		EnvLogLevel: "debug",
		EnvLogFile:  "",
		EnvAttempts: "4",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Runtime != RuntimeReplay || cfg.Replay.Script != "run.yaml" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.File != "" || cfg.Supervisor.MaxAttempts != 4 {
		t.Errorf("log file %q attempts %d", cfg.Log.File, cfg.Supervisor.MaxAttempts)
	}

	env[EnvAttempts] = "many"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Error("accepted a non-numeric attempt count")
	}
}
