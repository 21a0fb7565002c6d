package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/oarkflow/errors"
	"gopkg.in/yaml.v3"
)

// Config tunes the CLI. All fields are optional; zero values fall back to
// the defaults below.
type Config struct {
	Prompt     string `yaml:"prompt"`
	ContPrompt string `yaml:"cont_prompt"`
	History    string `yaml:"history"`
	Color      bool   `yaml:"color"`
	MaxDepth   int    `yaml:"max_depth"`
	CacheBytes int64  `yaml:"cache_bytes"`
}

func defaultConfig() Config {
	return Config{
		Prompt:     "nexus> ",
		ContPrompt: "...... ",
		History:    defaultHistoryPath(),
		Color:      true,
		MaxDepth:   1000,
		CacheBytes: 4 << 20,
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nexus.yaml")
}

// loadConfig reads path if it exists and overlays it onto the defaults.
// A missing file is not an error. A malformed or invalid file is reported
// alongside the defaults so the CLI can warn and keep going.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// An empty file decodes as io.EOF; treat it as "all defaults".
		return cfg, nil
	}

	loaded := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&loaded); err != nil {
		return cfg, errors.New("config: " + err.Error())
	}
	if err := loaded.validate(); err != nil {
		return cfg, err
	}
	return loaded, nil
}

func (c Config) validate() error {
	if c.MaxDepth < 1 {
		return errors.New("config: max_depth must be at least 1")
	}
	if c.CacheBytes < 0 {
		return errors.New("config: cache_bytes must not be negative")
	}
	return nil
}
