package project

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Project bundles goals, context snippets and files that are sent along with a prompt.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Files     []ProjectFile `json:"files"`
	Goals     []Goal        `json:"goals"`
	Contexts  []Context     `json:"contexts"`
}

type Goal struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type Context struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type ProjectFile struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// New returns an empty project with a fresh id.
func New(name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Files:     []ProjectFile{},
		Goals:     []Goal{},
		Contexts:  []Context{},
	}
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// AddGoal appends a goal after the existing ones.
func (p *Project) AddGoal(text string) Goal {
	g := Goal{ID: uuid.New().String(), Text: text, Order: len(p.Goals) + 1}
	p.Goals = append(p.Goals, g)
	p.touch()
	return g
}

func (p *Project) RemoveGoal(id string) bool {
	for i, g := range p.Goals {
		if g.ID == id {
			p.Goals = append(p.Goals[:i], p.Goals[i+1:]...)
			p.touch()
			return true
		}
	}
	return false
}

// AddContext appends a context snippet after the existing ones.
func (p *Project) AddContext(text string) Context {
	c := Context{ID: uuid.New().String(), Text: text, Order: len(p.Contexts) + 1}
	p.Contexts = append(p.Contexts, c)
	p.touch()
	return c
}

func (p *Project) RemoveContext(id string) bool {
	for i, c := range p.Contexts {
		if c.ID == id {
			p.Contexts = append(p.Contexts[:i], p.Contexts[i+1:]...)
			p.touch()
			return true
		}
	}
	return false
}

func (p *Project) addFile(f ProjectFile) {
	p.Files = append(p.Files, f)
	p.touch()
}

func (p *Project) removeFile(id string) bool {
	for i, f := range p.Files {
		if f.ID == id {
			p.Files = append(p.Files[:i], p.Files[i+1:]...)
			p.touch()
			return true
		}
	}
	return false
}

// ReorderGoals assigns new positions by goal id. Unknown ids are ignored.
func (p *Project) ReorderGoals(order map[string]int) {
	for i := range p.Goals {
		if n, ok := order[p.Goals[i].ID]; ok {
			p.Goals[i].Order = n
		}
	}
	sort.SliceStable(p.Goals, func(i, j int) bool { return p.Goals[i].Order < p.Goals[j].Order })
	p.touch()
}

// ReorderContexts assigns new positions by context id. Unknown ids are ignored.
func (p *Project) ReorderContexts(order map[string]int) {
	for i := range p.Contexts {
		if n, ok := order[p.Contexts[i].ID]; ok {
			p.Contexts[i].Order = n
		}
	}
	sort.SliceStable(p.Contexts, func(i, j int) bool { return p.Contexts[i].Order < p.Contexts[j].Order })
	p.touch()
}

// SortedGoals returns goals by their order field.
func (p *Project) SortedGoals() []Goal {
	out := append([]Goal(nil), p.Goals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SortedContexts returns contexts by their order field.
func (p *Project) SortedContexts() []Context {
	out := append([]Context(nil), p.Contexts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
