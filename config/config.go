// Package config loads the server configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type Channel struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"` // video, audio, or data
	Codec     string `yaml:"codec"`
	MaxFrames int    `yaml:"max_frames"`
}

type Config struct {
	Host       string    `yaml:"host"`
	Port       int       `yaml:"port"`
	ICEServers []string  `yaml:"ice_servers"`
	JWTSecret  string    `yaml:"jwt_secret"` // empty disables auth
	Channels   []Channel `yaml:"channels"`
}

// Default is the configuration used when no file is given: one H.264 video
// channel, one Opus audio channel, and one data channel.
func Default() Config {
	return Config{
		Host:       "0.0.0.0",
		Port:       8081,
		ICEServers: []string{"stun:stun.l.google.com:19302"},
		Channels: []Channel{
			{ID: "video_main", Kind: "video", Codec: "h264", MaxFrames: 200},
			{ID: "audio_main", Kind: "audio", Codec: "opus", MaxFrames: 200},
			{ID: "events", Kind: "data", MaxFrames: 200},
		},
	}
}

// Load reads a YAML config file, filling unset fields from Default. An empty
// path returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Port == 0 {
		cfg.Port = Default().Port
	}
	if cfg.Host == "" {
		cfg.Host = Default().Host
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = Default().Channels
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
