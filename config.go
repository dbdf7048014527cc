// config.go - optional project configuration file.
//
// Grounded on SPEC_FULL.md §3/§4.9: a YAML document of GD3/rate fallbacks,
// loaded before any MML so that explicit #TITLE/etc directives in the score
// always win. Parsed with gopkg.in/yaml.v3, the YAML library already
// present in the example pack (doismellburning-samoyed, valerio-go-jeebie).
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds the fallback fields a -config file may supply.
type ProjectConfig struct {
	Title     string `yaml:"title"`
	Game      string `yaml:"game"`
	System    string `yaml:"system"`
	Composer  string `yaml:"composer"`
	Notes     string `yaml:"notes"`
	Converter string `yaml:"converter"`
	Rate      int32  `yaml:"rate"`
}

// LoadProjectConfig reads and parses a YAML project config file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyTo seeds gd3 and rate with this config's fallback values. Called
// before any MML directive is processed, so a later #TITLE etc. always
// overwrites these defaults.
func (cfg *ProjectConfig) ApplyTo(gd3 *Gd3Metadata, rate *int32) {
	if cfg == nil {
		return
	}
	gd3.TitleEN = cfg.Title
	gd3.GameEN = cfg.Game
	gd3.SystemEN = cfg.System
	gd3.ComposerEN = cfg.Composer
	gd3.Notes = cfg.Notes
	gd3.Converter = cfg.Converter
	if cfg.Rate != 0 {
		*rate = cfg.Rate
	}
}
