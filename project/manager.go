// Package project stores projects under <home>/data/projects, one directory
// per project holding project.json and an files/ directory of uploads.
package project

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ola/config"
)

// DefaultID is the id of the project used when no other is selected.
const DefaultID = "default"

// ErrNotFound is returned for unknown projects and files.
var ErrNotFound = errors.New("not found")

type Manager struct {
	basePath string
}

// NewManager returns a manager rooted at <ola home>/data/projects.
func NewManager() (*Manager, error) {
	dir, err := config.HomePath("data", "projects")
	if err != nil {
		return nil, err
	}
	return NewManagerAt(dir)
}

// NewManagerAt returns a manager rooted at basePath.
func NewManagerAt(basePath string) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory %s: %w", basePath, err)
	}
	return &Manager{basePath: basePath}, nil
}

func (m *Manager) projectDir(id string) string { return filepath.Join(m.basePath, id) }

func (m *Manager) filesDir(id string) string { return filepath.Join(m.basePath, id, "files") }

func (m *Manager) activeFile() string { return filepath.Join(filepath.Dir(m.basePath), "active_project") }

func notFound(kind, id string) error {
	return fmt.Errorf("%s '%s' %w", kind, id, ErrNotFound)
}

// Create makes a new project and its directories.
func (m *Manager) Create(name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	p := New(name)
	if err := m.create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *Manager) create(p *Project) error {
	if err := os.MkdirAll(m.filesDir(p.ID), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	return m.Save(p)
}

// Load returns the project with the given id.
func (m *Manager) Load(id string) (*Project, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, notFound("project", id)
	}
	data, err := os.ReadFile(filepath.Join(m.projectDir(id), "project.json"))
	if os.IsNotExist(err) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", id, err)
	}
	return &p, nil
}

// Save writes project.json.
func (m *Manager) Save(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}
	path := filepath.Join(m.projectDir(p.ID), "project.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// List returns every readable project, most recently updated first.
func (m *Manager) List() ([]*Project, error) {
	entries, err := os.ReadDir(m.basePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var projects []*Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := m.Load(e.Name())
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

// Delete removes a project and its files. The active marker is cleared if it
// pointed at the deleted project.
func (m *Manager) Delete(id string) error {
	if _, err := m.Load(id); err != nil {
		return err
	}
	if err := os.RemoveAll(m.projectDir(id)); err != nil {
		return fmt.Errorf("failed to delete project directory: %w", err)
	}
	if active, _ := m.readActive(); active == id {
		return m.clearActive()
	}
	return nil
}

// Edit renames a project. An empty name leaves it unchanged.
func (m *Manager) Edit(id, newName string) (*Project, error) {
	p, err := m.Load(id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(newName); name != "" {
		p.Name = name
		p.touch()
	}
	if err := m.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetActive records the project used when none is named.
func (m *Manager) SetActive(id string) error {
	if _, err := m.Load(id); err != nil {
		return err
	}
	if err := os.WriteFile(m.activeFile(), []byte(id), 0644); err != nil {
		return fmt.Errorf("failed to write active project file: %w", err)
	}
	return nil
}

func (m *Manager) readActive() (string, error) {
	data, err := os.ReadFile(m.activeFile())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Active returns the active project id, or "" if none is set. A marker that
// points at a deleted project is removed.
func (m *Manager) Active() (string, error) {
	id, err := m.readActive()
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active project file: %w", err)
	}
	if _, err := m.Load(id); err != nil {
		return "", m.clearActive()
	}
	return id, nil
}

// clearActive removes the active marker. A missing marker is not an error.
func (m *Manager) clearActive() error {
	if err := os.Remove(m.activeFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear active project: %w", err)
	}
	return nil
}

// Default returns the "default" project, creating it on first use.
func (m *Manager) Default() (*Project, error) {
	p, err := m.Load(DefaultID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	p = New("Default")
	p.ID = DefaultID
	if err := m.create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Find looks a project up by case-insensitive name, then by id.
func (m *Manager) Find(nameOrID string) (*Project, error) {
	projects, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, nameOrID) {
			return p, nil
		}
	}
	for _, p := range projects {
		if p.ID == nameOrID {
			return p, nil
		}
	}
	return nil, notFound("project", nameOrID)
}

// Resolve returns the named project, else the active one, else the default.
func (m *Manager) Resolve(nameOrID string) (*Project, error) {
	if nameOrID != "" {
		return m.Find(nameOrID)
	}
	active, err := m.Active()
	if err != nil {
		return nil, err
	}
	if active != "" {
		return m.Load(active)
	}
	return m.Default()
}

// UploadFile stores content under the project and records it.
func (m *Manager) UploadFile(p *Project, filename string, content []byte) (ProjectFile, error) {
	if err := os.MkdirAll(m.filesDir(p.ID), 0755); err != nil {
		return ProjectFile{}, fmt.Errorf("failed to create files directory: %w", err)
	}

	f := ProjectFile{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(filename),
		Size:       int64(len(content)),
		MimeType:   GuessMimeType(filename),
		UploadedAt: time.Now().UTC(),
	}
	if err := os.WriteFile(filepath.Join(m.filesDir(p.ID), f.ID), content, 0644); err != nil {
		return ProjectFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	p.addFile(f)
	if err := m.Save(p); err != nil {
		return ProjectFile{}, err
	}
	return f, nil
}

// DownloadFile returns a stored file's bytes.
func (m *Manager) DownloadFile(projectID, fileID string) ([]byte, error) {
	if strings.ContainsAny(fileID, `/\`) {
		return nil, notFound("file", fileID)
	}
	data, err := os.ReadFile(filepath.Join(m.filesDir(projectID), fileID))
	if os.IsNotExist(err) {
		return nil, notFound("file", fileID)
	}
	return data, err
}

// DeleteFile removes a stored file and its record.
func (m *Manager) DeleteFile(p *Project, fileID string) error {
	if !p.removeFile(fileID) {
		return notFound("file", fileID)
	}
	path := filepath.Join(m.filesDir(p.ID), fileID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return m.Save(p)
}

// ReadFileAsText returns the file as text, or a base64 marker for binary content.
func (m *Manager) ReadFileAsText(projectID, fileID string) (string, error) {
	data, err := m.DownloadFile(projectID, fileID)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return fmt.Sprintf("[Binary file - base64 encoded: %s]", base64.StdEncoding.EncodeToString(data)), nil
}

// AddGoal appends a goal and saves the project.
func (m *Manager) AddGoal(p *Project, text string) (Goal, error) {
	if strings.TrimSpace(text) == "" {
		return Goal{}, fmt.Errorf("goal cannot be empty")
	}
	g := p.AddGoal(text)
	return g, m.Save(p)
}

func (m *Manager) RemoveGoal(p *Project, goalID string) error {
	if !p.RemoveGoal(goalID) {
		return notFound("goal", goalID)
	}
	return m.Save(p)
}

// AddContext appends a context snippet and saves the project.
func (m *Manager) AddContext(p *Project, text string) (Context, error) {
	if strings.TrimSpace(text) == "" {
		return Context{}, fmt.Errorf("context cannot be empty")
	}
	c := p.AddContext(text)
	return c, m.Save(p)
}

func (m *Manager) RemoveContext(p *Project, contextID string) error {
	if !p.RemoveContext(contextID) {
		return notFound("context", contextID)
	}
	return m.Save(p)
}
