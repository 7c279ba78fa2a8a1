// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values applied to fields left empty in wiki.yaml.
const (
	DefaultTemplate = "simple"
	DefaultPages    = "all_wikipages.json"
	DefaultTitle    = "Wiki"
)

// ErrConfigParse is returned when wiki.yaml is not valid YAML.
var ErrConfigParse = errors.New("failed to parse config")

// SiteConfig holds the configuration from the wiki.yaml file.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseurl"`
	Template    string `yaml:"template"`
	// Pages is the path of the JSON corpus, relative to wiki.yaml.
	Pages string `yaml:"pages"`
}

// LoadSiteConfig reads wiki.yaml and fills in defaults.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.Pages == "" {
		c.Pages = DefaultPages
	}
	if c.BaseURL == "" {
		c.BaseURL = "/"
	}
}

// ResolvePath makes a relative path relative to the directory of the config
// file. Absolute paths are returned unchanged.
func ResolvePath(configPath, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}
