package project

import (
	"fmt"
	"strings"
)

// maxBinaryPreview bounds how much of a base64 rendering is sent to the model.
const maxBinaryPreview = 4096

// Goals joins the project's goals in order, one per line.
func Goals(p *Project) string {
	goals := p.SortedGoals()
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, g.Text)
	}
	return strings.Join(lines, "\n")
}

// Bundle renders a project's goals, contexts and files as prompt context.
func (m *Manager) Bundle(p *Project) (string, error) {
	var b strings.Builder

	if goals := Goals(p); goals != "" {
		b.WriteString("Project goals:\n")
		b.WriteString(goals)
		b.WriteString("\n\n")
	}

	for _, c := range p.SortedContexts() {
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}

	for _, f := range p.Files {
		text, err := m.ReadFileAsText(p.ID, f.ID)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}
		if strings.HasPrefix(text, "[Binary file") && len(text) > maxBinaryPreview {
			text = text[:maxBinaryPreview] + "...]"
		}
		fmt.Fprintf(&b, "--- File: %s ---\n%s\n\n", f.Filename, text)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
