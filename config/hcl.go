package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// hclConfig is the on-disk shape of config.hcl:
//
//	active_provider = "openai"
//
//	provider "openai" {
//	  api_key  = env.OPENAI_API_KEY
//	  model    = "gpt-4o"
//	  settings = { base_url = "https://api.openai.com" }
//	}
type hclConfig struct {
	ActiveProvider string        `hcl:"active_provider,optional"`
	Providers      []hclProvider `hcl:"provider,block"`
}

type hclProvider struct {
	Name     string            `hcl:"name,label"`
	APIKey   string            `hcl:"api_key,optional"`
	Model    string            `hcl:"model,optional"`
	Settings map[string]string `hcl:"settings,optional"`
}

func decodeHCL(filename string, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parse %s: %w", filename, diags)
	}

	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, buildEvalContext(), &raw); diags.HasErrors() {
		return fmt.Errorf("decode %s: %w", filename, diags)
	}

	cfg.ActiveProvider = raw.ActiveProvider
	cfg.Providers = cfg.Providers[:0]
	for _, p := range raw.Providers {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Provider:           p.Name,
			APIKey:             p.APIKey,
			Model:              p.Model,
			AdditionalSettings: p.Settings,
		})
	}
	return nil
}

// buildEvalContext exposes the process environment as env.* and the vars file
// as vars.*.
func buildEvalContext() *hcl.EvalContext {
	envMap := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclIdentifier(name) {
			continue
		}
		envMap[name] = cty.StringVal(value)
	}

	varsMap := make(map[string]cty.Value)
	fileVars, _ := LoadVars()
	for name, value := range fileVars {
		if hclIdentifier(name) {
			varsMap[name] = cty.StringVal(value)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  cty.ObjectVal(envMap),
			"vars": cty.ObjectVal(varsMap),
		},
	}
}

func hclIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

func encodeHCL(c *Config) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if c.ActiveProvider != "" {
		body.SetAttributeValue("active_provider", cty.StringVal(c.ActiveProvider))
	}

	for _, p := range c.Providers {
		body.AppendNewline()
		block := body.AppendNewBlock("provider", []string{p.Provider}).Body()
		if p.APIKey != "" {
			block.SetAttributeValue("api_key", cty.StringVal(p.APIKey))
		}
		if p.Model != "" {
			block.SetAttributeValue("model", cty.StringVal(p.Model))
		}
		if len(p.AdditionalSettings) > 0 {
			settings := make(map[string]cty.Value, len(p.AdditionalSettings))
			for k, v := range p.AdditionalSettings {
				settings[k] = cty.StringVal(v)
			}
			block.SetAttributeValue("settings", cty.MapVal(settings))
		}
	}

	return f.Bytes()
}
