package config

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const relPath = "smarttype/config.yaml"

// DefaultPath is $XDG_CONFIG_HOME/smarttype/config.yaml. The directory is
// created if needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(relPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// Load reads the config at path, writing the defaults there first if the file
// does not exist yet.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read parses and validates the config at path. Keys missing from the file
// keep their default values, except custom_typos which is taken as written.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	cfg.CustomTypos = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
