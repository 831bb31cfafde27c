package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Exam.Lang != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigReadsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[exam]
lang = "hi"
exams-dir = "/tmp/exams"
fullscreen = false

[log]
level = "debug"
format = "pretty"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Exam.Lang == nil || *cfg.Exam.Lang != "hi" {
		t.Fatalf("expected lang hi")
	}
	if cfg.Exam.Fullscreen == nil || *cfg.Exam.Fullscreen {
		t.Fatalf("expected fullscreen false")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level")
	}
	if cfg.Log.File != nil {
		t.Fatalf("expected unset log file")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[exam]\nlanguage = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "exam.language") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	if got := DefaultConfigPath(); got != filepath.Join(dir, "config", "mockexam", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "mockexam", "mockexam.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "state", "mockexam", "mockexam.log") {
		t.Fatalf("unexpected log path %s", got)
	}
	if got := DefaultExamsDir(); got != filepath.Join(dir, "config", "mockexam", "exams") {
		t.Fatalf("unexpected exams dir %s", got)
	}
}
