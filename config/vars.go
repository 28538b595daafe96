package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// VarsFilePath returns the path of the KEY=value secrets file.
func VarsFilePath() (string, error) {
	return HomePath("vars.txt")
}

// LoadVars reads the vars file. A missing file yields an empty map.
func LoadVars() (map[string]string, error) {
	vars := make(map[string]string)

	path, err := VarsFilePath()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return vars, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if ok {
			vars[strings.TrimSpace(name)] = value
		}
	}

	return vars, scanner.Err()
}

func saveVars(vars map[string]string) error {
	path, err := VarsFilePath()
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, name := range sortedKeys(vars) {
		if _, err := fmt.Fprintf(file, "%s=%s\n", name, vars[name]); err != nil {
			return err
		}
	}
	return nil
}

func GetVar(name string) (string, error) {
	vars, err := LoadVars()
	if err != nil {
		return "", err
	}
	value, ok := vars[name]
	if !ok {
		return "", fmt.Errorf("variable '%s' not found", name)
	}
	return value, nil
}

func SetVar(name, value string) error {
	if !hclIdentifier(name) {
		return fmt.Errorf("invalid variable name '%s'", name)
	}
	vars, err := LoadVars()
	if err != nil {
		return err
	}
	vars[name] = value
	return saveVars(vars)
}

func DeleteVar(name string) error {
	vars, err := LoadVars()
	if err != nil {
		return err
	}
	if _, ok := vars[name]; !ok {
		return fmt.Errorf("variable '%s' not found", name)
	}
	delete(vars, name)
	return saveVars(vars)
}

// ListVars returns variable names in sorted order.
func ListVars() ([]string, error) {
	vars, err := LoadVars()
	if err != nil {
		return nil, err
	}
	return sortedKeys(vars), nil
}

// ResolveVarRef resolves "var.<name>" against the vars file. Anything else is
// returned unchanged, so an API key can be stored either inline or as a reference.
func ResolveVarRef(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, "var.")
	if !ok {
		return ref, nil
	}
	return GetVar(name)
}

// IsSecretName reports whether a variable looks like a credential.
func IsSecretName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range []string{"_key", "_token", "_secret", "_password"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
