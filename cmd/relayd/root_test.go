package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	want := map[string]bool{
		"run":      false,
		"validate": false,
		"agents":   false,
		"version":  false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLoadConfig_MissingDefaultFileFallsBack(t *testing.T) {
	orig := cfgFile
	defer func() { cfgFile = orig }()
	cfgFile = filepath.Join(t.TempDir(), "relay.yaml")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.ListenAddress == "" {
		t.Error("fallback config has empty listen address")
	}
	if len(cfg.Backends) == 0 {
		t.Error("fallback config has no backends")
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	orig := cfgFile
	defer func() { cfgFile = orig }()

	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "relay.yaml")
	content := "server:\n  listen_address: \":9191\"\n"
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.ListenAddress != ":9191" {
		t.Errorf("listen address = %q, want :9191", cfg.Server.ListenAddress)
	}
}
