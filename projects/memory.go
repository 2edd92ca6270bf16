package projects

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Memory serves a fixed project list.
type Memory struct {
	projects []Project
}

// NewMemory returns a Memory repository over a copy of list.
func NewMemory(list []Project) *Memory {
	cp := make([]Project, len(list))
	copy(cp, list)
	return &Memory{projects: cp}
}

// List returns every project in declaration order.
func (m *Memory) List(ctx context.Context) ([]Project, error) {
	out := make([]Project, len(m.projects))
	copy(out, m.projects)
	return out, nil
}

// Get returns the project with the given slug.
func (m *Memory) Get(ctx context.Context, slug string) (Project, error) {
	for _, p := range m.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Project{}, ErrNotFound
}

type projectFile struct {
	Projects []Project `yaml:"projects"`
}

// LoadFile reads a YAML document of the form
//
//	projects:
//	  - slug: portfolio-website
//	    title: Portfolio Website
//
// and returns it as a Memory repository.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f projectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range f.Projects {
		if f.Projects[i].ID == 0 {
			f.Projects[i].ID = i + 1
		}
	}
	if err := Validate(f.Projects); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(f.Projects), nil
}

// MarshalYAML encodes list in the format LoadFile reads.
func MarshalYAML(list []Project) ([]byte, error) {
	return yaml.Marshal(projectFile{Projects: list})
}
