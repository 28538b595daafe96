// Package prompt builds structured prompts and runs them against a provider.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ola/settings"
)

// Format renders goals, return format and warnings with the template prefixes.
// Context is appended on its own line when present.
func Format(goals, returnFormat, warnings, context string, t settings.PromptTemplate) string {
	s := fmt.Sprintf("%s%s\n%s%s\n%s%s",
		t.GoalsPrefix, goals,
		t.ReturnFormatPrefix, returnFormat,
		t.WarningsPrefix, warnings)
	return WithContext(s, context)
}

// WithContext appends "\nContext: ..." when context is not empty.
func WithContext(prompt, context string) string {
	if context == "" {
		return prompt
	}
	return prompt + "\nContext: " + context
}

const (
	localHintsFile  = ".olaHints"
	globalHintsFile = ".ola-hints/olaHints"
)

// LoadHints reads <dir>/.olaHints, falling back to <home>/.ola-hints/olaHints.
// Missing files yield "".
func LoadHints(dir, home string) (string, error) {
	candidates := []string{filepath.Join(dir, localHintsFile)}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, globalHintsFile))
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read hints %s: %w", path, err)
		}
		return string(data), nil
	}
	return "", nil
}

// AppendHints adds "\nHINTS: ..." when hints is not empty.
func AppendHints(prompt, hints string) string {
	if hints == "" {
		return prompt
	}
	return prompt + "\nHINTS: " + hints
}

// Input is what a prompt run starts from after flags and stdin are combined.
type Input struct {
	Goals   string
	Context string
	// Interactive is set when neither goals nor piped content were given.
	Interactive bool
}

// ResolveInput combines the -g flag with piped stdin. Piped content becomes
// the goals when -g is absent, and the context when it is present.
func ResolveInput(goals string, goalsSet bool, piped string) Input {
	switch {
	case goalsSet && strings.TrimSpace(piped) != "":
		return Input{Goals: goals, Context: piped}
	case goalsSet:
		return Input{Goals: goals}
	case piped != "":
		return Input{Goals: piped}
	}
	return Input{Interactive: true}
}
