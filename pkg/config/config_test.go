package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("syncup", pflag.ContinueOnError)
	RegisterFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return f
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "data" || cfg.Port != 8080 || cfg.Threshold != 0.3 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.RadioSize != 30 || cfg.DiscoverySize != 20 || cfg.SuggestionLimit != 10 {
		t.Errorf("Unexpected listing sizes: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.JSON {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if cfg.HasQuery() {
		t.Error("No query was requested")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoad_Priority(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	toml := "port = 9000\nthreshold = 0.5\ndata-dir = \"catalog\"\n\n[log]\nlevel = \"warn\"\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(toml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SYNCUP_PORT", "9100")
	t.Setenv("SYNCUP_LOG_LEVEL", "debug")
	t.Setenv("SYNCUP_RADIO_SIZE", "12")

	cfg, err := Load(newFlags(t, "--port", "9200"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 9200 {
		t.Errorf("Flag should win, got port %d", cfg.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Env should beat the file, got level %q", cfg.Log.Level)
	}
	if cfg.RadioSize != 12 {
		t.Errorf("Env should set radio-size, got %d", cfg.RadioSize)
	}
	if cfg.Threshold != 0.5 || cfg.DataDir != "catalog" {
		t.Errorf("File should beat defaults, got threshold %v data-dir %q", cfg.Threshold, cfg.DataDir)
	}
}

func TestLoad_FlagsOnly(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(newFlags(t, "--log-level", "trace", "--log-json", "--recommend", "t1", "-w"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "trace" || !cfg.Log.JSON {
		t.Errorf("Log flags not applied: %+v", cfg.Log)
	}
	if !cfg.Watch || cfg.Recommend != "t1" || !cfg.HasQuery() {
		t.Errorf("Flags not applied: %+v", cfg)
	}
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("suggestion-limit = 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SuggestionLimit != 3 || cfg.ConfigFile != path {
		t.Errorf("Custom file not used: %+v", cfg)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("port = = 1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(nil); err == nil {
		t.Error("Expected an error for a malformed config file")
	}
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(newFlags(t, "--threshold", "1.5", "--port", "0"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation errors")
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir(%s): %v", old, err)
		}
	})
}
