/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", CLIFlags{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DataDir == "" {
		t.Errorf("no default data dir")
	}
	if cfg.ConnectionsFile != filepath.Join(cfg.DataDir, "connections.yaml") {
		t.Errorf("connections file = %s", cfg.ConnectionsFile)
	}
	if cfg.SecretFile != filepath.Join(cfg.DataDir, "secret.key") {
		t.Errorf("secret file = %s", cfg.SecretFile)
	}
	if cfg.Telemetry.Enabled {
		t.Errorf("telemetry should default to disabled")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
data_dir: /var/lib/sdmcp
telemetry:
  enabled: true
`)
	cfg, err := LoadConfig(path, CLIFlags{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DataDir != "/var/lib/sdmcp" {
		t.Errorf("data dir = %s", cfg.DataDir)
	}
	if !cfg.Telemetry.Enabled {
		t.Errorf("telemetry flag not read from file")
	}
	// Derived defaults follow the configured data dir
	if cfg.ConnectionsFile != filepath.Join("/var/lib/sdmcp", "connections.yaml") {
		t.Errorf("connections file = %s", cfg.ConnectionsFile)
	}
}

func TestCLIFlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "data_dir: /from/file\n")
	cfg, err := LoadConfig(path, CLIFlags{
		DataDir:         "/from/flag",
		ConnectionsFile: "/elsewhere/conns.yaml",
	})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DataDir != "/from/flag" {
		t.Errorf("flag did not override file: %s", cfg.DataDir)
	}
	if cfg.ConnectionsFile != "/elsewhere/conns.yaml" {
		t.Errorf("connections file = %s", cfg.ConnectionsFile)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), CLIFlags{}); err == nil {
		t.Errorf("missing config file accepted")
	}
	path := writeConfigFile(t, "data_dir: [not, a, string\n")
	if _, err := LoadConfig(path, CLIFlags{}); err == nil {
		t.Errorf("malformed YAML accepted")
	}
}

func TestReloadableConfig(t *testing.T) {
	path := writeConfigFile(t, "data_dir: /v1\n")
	cfg, err := LoadConfig(path, CLIFlags{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	rc := NewReloadableConfig(cfg, path, CLIFlags{})

	var reloaded *Config
	rc.OnReload(func(c *Config) { reloaded = c })

	if err := os.WriteFile(path, []byte("data_dir: /v2\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := rc.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if rc.Get().DataDir != "/v2" {
		t.Errorf("reload did not pick up new data dir: %s", rc.Get().DataDir)
	}
	if reloaded == nil || reloaded.DataDir != "/v2" {
		t.Errorf("OnReload callback not invoked with new config")
	}
}

func TestReloadKeepsOldConfigOnFailure(t *testing.T) {
	path := writeConfigFile(t, "data_dir: /v1\n")
	cfg, err := LoadConfig(path, CLIFlags{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	rc := NewReloadableConfig(cfg, path, CLIFlags{})

	if err := os.WriteFile(path, []byte("data_dir: [broken\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := rc.Reload(); err == nil {
		t.Fatalf("reload of malformed config succeeded")
	}
	if rc.Get().DataDir != "/v1" {
		t.Errorf("failed reload replaced the working config")
	}
}

func TestReloadWithoutPath(t *testing.T) {
	rc := NewReloadableConfig(&Config{DataDir: "/v1"}, "", CLIFlags{})
	if err := rc.Reload(); err == nil {
		t.Errorf("reload without a file path succeeded")
	}
}
