package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

// Setup works against the global viper instance, so the missing-file case
// runs before the populated one to keep earlier reads from leaking in.
func TestSetup(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Setup(filepath.Join(dir, "absent.env"))
	if err != nil {
		t.Fatalf("Setup without a config file: %v", err)
	}
	if cfg.ServerPort != "5410" {
		t.Errorf("default port = %q, want 5410", cfg.ServerPort)
	}
	if cfg.ProfileDir != "profiles" || cfg.ModelPath != "model.json" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	envPath := filepath.Join(dir, ".env")
	body := "SERVER_PORT=7777\nMONGO_URI=mongodb://localhost:27017\nLOCAL_CORS=true\n"
	if err := os.WriteFile(envPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err = Setup(envPath)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cfg.ServerPort != "7777" {
		t.Errorf("port = %q, want 7777", cfg.ServerPort)
	}
	if cfg.MongoUri != "mongodb://localhost:27017" {
		t.Errorf("mongo uri = %q", cfg.MongoUri)
	}
	if !cfg.IsLocalCors {
		t.Error("LOCAL_CORS not parsed")
	}
	if cfg.ProfileDir != "profiles" {
		t.Errorf("unset key lost its default: %q", cfg.ProfileDir)
	}
}
