package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/songzhibin97/metricsd/internal/config"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Failed to run version: %v", err)
	}

	if !strings.Contains(out.String(), "Metricsd "+Version) {
		t.Errorf("Expected version in output, got %q", out.String())
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("METRICSD_CONFIG_DIR", dir)

	cfgFile = ""
	if got := configFile(); got != "" {
		t.Errorf("Expected no config file when none exists, got %s", got)
	}

	path := filepath.Join(dir, config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte("metrics:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if got := configFile(); got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}

	cfgFile = "custom.yaml"
	defer func() { cfgFile = "" }()
	if got := configFile(); got != "custom.yaml" {
		t.Errorf("Expected flag value to win, got %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Expected logger, got nil")
	}

	if _, err := newLogger(config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}
