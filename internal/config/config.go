// Package config handles configuration loading and shared defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	// DataDir holds the persisted location state.
	DataDir string `yaml:"data_dir,omitempty"`

	// MediaRoot is where albums of exported photos live.
	MediaRoot string `yaml:"media_root,omitempty"`

	// ShareDir is the outbox the share stand-in writes to.
	ShareDir string `yaml:"share_dir,omitempty"`

	Geocoder  Service `yaml:"geocoder,omitempty"`
	StaticMap Service `yaml:"static_map,omitempty"`
	Export    Export  `yaml:"export,omitempty"`
}

// Service points at one remote collaborator.
type Service struct {
	URL string `yaml:"url,omitempty"`
	Key string `yaml:"key,omitempty"`
}

// Export tunes the flattened image encoding.
type Export struct {
	Format  string `yaml:"format,omitempty"`
	Quality int    `yaml:"quality,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:   "data",
		MediaRoot: "media",
		ShareDir:  "shared",
		Geocoder:  Service{URL: "https://us1.locationiq.com"},
		StaticMap: Service{URL: "https://maps.locationiq.com"},
		Export:    Export{Format: "jpg", Quality: 90},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Unset fields fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the file when it exists and falls back to defaults
// when it does not. Any other read or parse error is still reported.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	return cfg, nil
}
