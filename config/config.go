package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoActiveProvider is returned when no provider has been configured yet.
var ErrNoActiveProvider = errors.New("no active provider configured. Run 'ola configure' first")

// Candidate config file names, in lookup order.
var configFiles = []string{"config.yaml", "config.yml", "config.json", "config.hcl"}

// ProviderConfig describes one configured model provider.
type ProviderConfig struct {
	Provider           string            `yaml:"provider" json:"provider"`
	APIKey             string            `yaml:"api_key" json:"api_key"`
	Model              string            `yaml:"model,omitempty" json:"model,omitempty"`
	AdditionalSettings map[string]string `yaml:"additional_settings,omitempty" json:"additional_settings,omitempty"`
}

// Setting returns an additional setting or "".
func (p ProviderConfig) Setting(key string) string {
	if p.AdditionalSettings == nil {
		return ""
	}
	return p.AdditionalSettings[key]
}

// BaseURL returns the configured endpoint override, or the provider default.
func (p ProviderConfig) BaseURL() string {
	if u := p.Setting("base_url"); u != "" {
		return u
	}
	return DefaultBaseURL(Provider(p.Provider))
}

// Config holds every configured provider and which one is active.
type Config struct {
	ActiveProvider string           `yaml:"active_provider" json:"active_provider"`
	Providers      []ProviderConfig `yaml:"providers" json:"providers"`

	path string
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// AddProvider replaces the entry with the same provider name, or appends a
// new one, and makes it active.
func (c *Config) AddProvider(p ProviderConfig) {
	p.Provider = NormalizeProvider(p.Provider)
	for i := range c.Providers {
		if c.Providers[i].Provider == p.Provider {
			c.Providers[i] = p
			c.ActiveProvider = p.Provider
			return
		}
	}
	c.Providers = append(c.Providers, p)
	c.ActiveProvider = p.Provider
}

// RemoveProvider drops a provider. The active provider is cleared if it was removed.
func (c *Config) RemoveProvider(name string) bool {
	name = NormalizeProvider(name)
	for i, p := range c.Providers {
		if p.Provider == name {
			c.Providers = append(c.Providers[:i], c.Providers[i+1:]...)
			if c.ActiveProvider == name {
				c.ActiveProvider = ""
			}
			return true
		}
	}
	return false
}

// Provider looks up a configured provider by name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	name = NormalizeProvider(name)
	for _, p := range c.Providers {
		if p.Provider == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// Active returns the active provider.
func (c *Config) Active() (ProviderConfig, error) {
	if c.ActiveProvider == "" {
		return ProviderConfig{}, ErrNoActiveProvider
	}
	p, ok := c.Provider(c.ActiveProvider)
	if !ok {
		return ProviderConfig{}, fmt.Errorf("active provider '%s' is not configured: %w", c.ActiveProvider, ErrNoActiveProvider)
	}
	return p, nil
}

// DefaultPath returns the existing config file under the ola home, or the
// YAML path for new installs.
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(dir, configFiles[0]), nil
}

// LoadDefault loads the config from DefaultPath.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load reads a config file, choosing the format by extension. A missing file
// yields an empty config bound to path.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch formatOf(path) {
	case "hcl":
		if err := decodeHCL(path, data, cfg); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for i := range cfg.Providers {
		cfg.Providers[i].Provider = NormalizeProvider(cfg.Providers[i].Provider)
	}
	cfg.ActiveProvider = NormalizeProvider(cfg.ActiveProvider)
	return cfg, nil
}

// Save writes the config back to its path with 0600 permissions.
func (c *Config) Save() error {
	if c.path == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = path
	}
	return c.SaveAs(c.path)
}

// SaveAs writes the config to path, choosing the format by extension.
func (c *Config) SaveAs(path string) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case "hcl":
		data = encodeHCL(c)
	case "yaml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return err
	}
	c.path = path
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return "hcl"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
