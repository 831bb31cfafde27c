package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "mockexam.log")
	log, closer, err := Setup("debug", "json", path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Debug().Str("component", "test").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", data, err)
	}
	if entry["message"] != "hello" || entry["component"] != "test" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockexam.log")
	log, closer, err := Setup("warn", "pretty", path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info().Msg("quiet")
	log.Warn().Msg("loud")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSetupInvalidLevelDefaultsToInfo(t *testing.T) {
	log, closer, err := Setup("nonsense", "json", filepath.Join(t.TempDir(), "x.log"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer closer.Close()
	if log.GetLevel().String() != "info" {
		t.Fatalf("expected info level, got %s", log.GetLevel())
	}
}
