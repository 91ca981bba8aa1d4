package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Expected default port 8081, got %d", cfg.Port)
	}
	if len(cfg.Channels) != 3 {
		t.Errorf("Expected 3 default channels, got %d", len(cfg.Channels))
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
host: 127.0.0.1
port: 9000
jwt_secret: sekrit
ice_servers:
  - stun:stun.example.org:3478
channels:
  - id: cam
    kind: video
    codec: h265
    max_frames: 50
  - id: chat
    kind: data
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Expected addr 127.0.0.1:9000, got %s", cfg.Addr())
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0].Codec != "h265" {
		t.Errorf("Unexpected channels: %+v", cfg.Channels)
	}
	if cfg.Channels[0].MaxFrames != 50 {
		t.Errorf("Expected max_frames 50, got %d", cfg.Channels[0].MaxFrames)
	}
	if cfg.JWTSecret != "sekrit" {
		t.Error("jwt_secret not loaded")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}
