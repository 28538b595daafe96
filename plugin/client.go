package plugin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"ola/config"
	"ola/llm"
)

// DefaultVersion names plugins built from local source.
const DefaultVersion = config.LocalPluginVersion

func init() {
	llm.RegisterFactory(string(config.ProviderPlugin), newFromConfig)
}

// PluginsDir returns <ola home>/plugins.
func PluginsDir() (string, error) {
	return config.HomePath("plugins")
}

// Dir returns the directory for a specific plugin version.
func Dir(name, version string) (string, error) {
	if version == "" {
		version = DefaultVersion
	}
	if err := config.ValidatePluginName(name); err != nil {
		return "", err
	}
	if err := config.ValidatePluginVersion(version); err != nil {
		return "", err
	}
	base, err := PluginsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name, version), nil
}

// BinaryPath returns the path to a plugin executable.
func BinaryPath(name, version string) (string, error) {
	dir, err := Dir(name, version)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plugin"), nil
}

// Installed lists "name@version" for every installed plugin.
func Installed() ([]string, error) {
	base, err := PluginsDir()
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(base, "*", "*", "plugin"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		versionDir := filepath.Dir(m)
		out = append(out, filepath.Base(filepath.Dir(versionDir))+"@"+filepath.Base(versionDir))
	}
	sort.Strings(out)
	return out, nil
}

// Client is a running plugin process exposed as an llm.Provider.
type Client struct {
	*Provider
	client *goplugin.Client
	name   string
}

// Load starts the named plugin and dispenses its provider.
func Load(name, version string, logger hclog.Logger) (*Client, error) {
	path, err := BinaryPath(name, version)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("plugin not found: %s (version %s) at %s", name, version, path)
	}
	return LoadPath(name, path, logger)
}

// LoadPath starts the plugin binary at path.
func LoadPath(name, path string, logger hclog.Logger) (*Client, error) {
	if logger == nil {
		logger = hclog.Default()
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(path),
		Logger:           logger.Named("plugin").With("plugin", name),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin: %w", err)
	}

	raw, err := rpcClient.Dispense("provider")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	impl, ok := raw.(ModelProvider)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s does not implement a model provider", name)
	}

	return &Client{Provider: NewProvider(impl), client: client, name: name}, nil
}

// Close shuts down the plugin process.
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Kill()
	}
	return nil
}

func (c *Client) Name() string {
	return c.name
}

// newFromConfig handles provider entries of kind "plugin". The plugin is
// named by the "plugin" setting and optionally pinned by "version".
func newFromConfig(_ context.Context, pc config.ProviderConfig) (llm.Provider, error) {
	if pc.Setting("plugin") == "" {
		return nil, fmt.Errorf("plugin provider requires a 'plugin' setting")
	}
	name, version, err := pc.PluginRef()
	if err != nil {
		return nil, err
	}

	c, err := Load(name, version, hclog.Default())
	if err != nil {
		return nil, err
	}

	if err := c.Configure(settingsFor(pc)); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to configure plugin %s: %w", name, err)
	}
	return c, nil
}

func settingsFor(pc config.ProviderConfig) map[string]string {
	settings := make(map[string]string, len(pc.AdditionalSettings)+2)
	for k, v := range pc.AdditionalSettings {
		settings[k] = v
	}
	if pc.APIKey != "" {
		settings["api_key"] = pc.APIKey
	}
	if pc.Model != "" {
		settings["model"] = pc.Model
	}
	return settings
}
