package config

import (
	"fmt"
	"regexp"
	"strings"
)

// LocalPluginVersion names plugins built from source with `ola plugin build`.
const LocalPluginVersion = "local"

// pluginVersion matches "local" or a semantic version such as v1.0.0 or 0.2.1-beta.
var pluginVersion = regexp.MustCompile(`^(local|v?\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?)$`)

// ValidatePluginName rejects names that cannot be used as a plugin directory.
func ValidatePluginName(name string) error {
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.Contains(name, "@") {
		return fmt.Errorf("invalid plugin name '%s'", name)
	}
	return nil
}

// ValidatePluginVersion accepts "local" or a semantic version.
func ValidatePluginVersion(version string) error {
	if version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !pluginVersion.MatchString(version) {
		return fmt.Errorf("invalid version '%s': must be 'local' or semantic version (e.g., v1.0.0)", version)
	}
	return nil
}

// PluginRef returns the plugin name and version a "plugin" provider entry
// points at. The version defaults to local.
func (p ProviderConfig) PluginRef() (name, version string, err error) {
	name = p.Setting("plugin")
	version = p.Setting("version")
	if version == "" {
		version = LocalPluginVersion
	}
	if err := ValidatePluginName(name); err != nil {
		return "", "", err
	}
	if err := ValidatePluginVersion(version); err != nil {
		return "", "", err
	}
	return name, version, nil
}
