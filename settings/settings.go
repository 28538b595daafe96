// Package settings manages ~/.ola/settings.yaml, the user's defaults for
// prompts, output and session logging.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ola/config"
)

const fileName = "settings.yaml"

// Session log backends.
const (
	BackendJSONL    = "jsonl"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Settings struct {
	DefaultModel   string         `yaml:"default_model"`
	PromptTemplate PromptTemplate `yaml:"prompt_template"`
	Defaults       Defaults       `yaml:"defaults"`
	Behavior       Behavior       `yaml:"behavior"`
}

// PromptTemplate holds the labels placed before each prompt section.
type PromptTemplate struct {
	GoalsPrefix        string `yaml:"goals_prefix"`
	ReturnFormatPrefix string `yaml:"return_format_prefix"`
	WarningsPrefix     string `yaml:"warnings_prefix"`
}

// Defaults apply when the matching flag is not given.
type Defaults struct {
	ReturnFormat string `yaml:"return_format"`
	Quiet        bool   `yaml:"quiet"`
	NoThinking   bool   `yaml:"no_thinking"`
	Clipboard    bool   `yaml:"clipboard"`
}

type Behavior struct {
	LogFile           string            `yaml:"log_file"`
	EnableLogging     bool              `yaml:"enable_logging"`
	LogBackend        string            `yaml:"log_backend"`
	LogDSN            string            `yaml:"log_dsn,omitempty"`
	ThinkingAnimation ThinkingAnimation `yaml:"thinking_animation"`
}

type ThinkingAnimation struct {
	Emojis []string `yaml:"emojis"`
	Text   string   `yaml:"text"`
}

// Default returns the settings written on first run.
func Default() *Settings {
	return &Settings{
		DefaultModel: "gpt-5",
		PromptTemplate: PromptTemplate{
			GoalsPrefix:        "🏆 Goals: ",
			ReturnFormatPrefix: "📝 Return Format: ",
			WarningsPrefix:     "⚠️ Warnings: ",
		},
		Defaults: Defaults{
			ReturnFormat: "text",
		},
		Behavior: Behavior{
			LogFile:       "sessions.jsonl",
			EnableLogging: true,
			LogBackend:    BackendJSONL,
			ThinkingAnimation: ThinkingAnimation{
				Emojis: []string{"🌊", "🏄", "🌊", "🏄‍♀️"},
				Text:   "thinking...",
			},
		},
	}
}

// Path returns the settings file location.
func Path() (string, error) {
	return config.HomePath(fileName)
}

// Load reads the settings file, creating it with defaults when missing.
// Keys absent from the file keep their default values.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.SaveTo(path); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to the default path.
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Reset overwrites the settings file with defaults.
func Reset() (*Settings, error) {
	s := Default()
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	switch s.Behavior.LogBackend {
	case "", BackendJSONL, BackendSQLite:
	case BackendPostgres:
		if s.Behavior.LogDSN == "" {
			return fmt.Errorf("log_backend 'postgres' requires log_dsn")
		}
	default:
		return fmt.Errorf("unknown log_backend '%s' (expected jsonl, sqlite or postgres)", s.Behavior.LogBackend)
	}
	return nil
}

// ReturnFormat returns the explicit format if set, else the configured default.
func (s *Settings) ReturnFormat(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if s.Defaults.ReturnFormat != "" {
		return s.Defaults.ReturnFormat
	}
	return "text"
}

// LogTarget returns the session log backend and its file path or DSN.
// Relative log files resolve under the ola home so every working directory
// shares one log.
func (s *Settings) LogTarget() (backend, target string, err error) {
	backend = s.Behavior.LogBackend
	if backend == "" {
		backend = BackendJSONL
	}

	if backend == BackendPostgres {
		return backend, s.Behavior.LogDSN, nil
	}

	file := s.Behavior.LogFile
	if file == "" {
		file = "sessions.jsonl"
	}
	if backend == BackendSQLite && strings.HasSuffix(file, ".jsonl") {
		file = strings.TrimSuffix(file, ".jsonl") + ".db"
	}
	if strings.HasPrefix(file, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		file = filepath.Join(home, file[2:])
	}
	if !filepath.IsAbs(file) {
		dir, err := config.HomeDir()
		if err != nil {
			return "", "", err
		}
		file = filepath.Join(dir, file)
	}
	return backend, file, nil
}
