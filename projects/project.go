// Package projects holds the portfolio's project listing and the read-only
// repositories that serve it: an in-memory list, a YAML file, and a SQLite
// database, optionally fronted by a TTL cache.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no project has the requested slug.
var ErrNotFound = errors.New("project not found")

// Project is a single portfolio entry.
type Project struct {
	ID           int      `json:"id" yaml:"id"`
	Slug         string   `json:"slug" yaml:"slug"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	ImageURL     string   `json:"imageUrl" yaml:"image_url"`
	Images       []string `json:"images,omitempty" yaml:"images,omitempty"`
	LiveURL      string   `json:"liveUrl" yaml:"live_url"`
	GitHubURL    string   `json:"githubUrl" yaml:"github_url"`
	Category     string   `json:"category,omitempty" yaml:"category,omitempty"`
	Body         string   `json:"-" yaml:"body,omitempty"` // Markdown write-up for the detail page
}

// Gallery returns the images shown on the detail page, falling back to the
// listing image.
func (p Project) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}

// Repository is the read-only source of projects the handlers depend on.
type Repository interface {
	List(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, slug string) (Project, error)
}

// Validate checks that every project has a slug and title and that slugs
// and ids are unique.
func Validate(list []Project) error {
	slugs := make(map[string]struct{}, len(list))
	ids := make(map[int]struct{}, len(list))
	for i, p := range list {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" {
			return fmt.Errorf("project %d: slug is required", i)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("project %q: title is required", slug)
		}
		if _, dup := slugs[slug]; dup {
			return fmt.Errorf("project %q: duplicate slug", slug)
		}
		slugs[slug] = struct{}{}
		if p.ID != 0 {
			if _, dup := ids[p.ID]; dup {
				return fmt.Errorf("project %q: duplicate id %d", slug, p.ID)
			}
			ids[p.ID] = struct{}{}
		}
	}
	return nil
}

// Default returns the projects shipped with the site.
func Default() []Project {
	return []Project{
		{
			ID:           1,
			Slug:         "portfolio-website",
			Title:        "Portfolio Website",
			Description:  "A responsive portfolio website built with Go, Echo and S3",
			Technologies: []string{"Go", "Echo", "AWS", "templ"},
			ImageURL:     "/public/images/portfolio-1.jpg",
			Images:       []string{"/public/images/portfolio-1.jpg"},
			LiveURL:      "https://yourportfolio.com",
			GitHubURL:    "https://github.com/yourusername/portfolio",
			Category:     "web",
			Body: `## Overview

Server-rendered pages with a small JSON API for the **contact form** and
**image uploads**.

- Contact messages are relayed over SMTP
- Uploads land in an S3 bucket with a public URL
- Both endpoints are rate limited per client address`,
		},
	}
}
