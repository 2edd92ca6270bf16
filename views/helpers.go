package views

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/projects"
)

var funcs = template.FuncMap{
	"navClass":    NavClass,
	"join":        func(vals []string) string { return strings.Join(vals, ", ") },
	"markdown":    markdownHTML,
	"pathEscape":  url.PathEscape,
	"related":     RelatedProjects,
	"projectPath": func(p projects.Project) string { return "/projects/" + url.PathEscape(p.Slug) },
	"stats":       func() []Stat { return Stats },
	"skills":      func() []SkillCategory { return Skills },
	"timeline":    func() []Experience { return Timeline },
}

// NavClass returns CSS classes for a navigation link, with active variant.
func NavClass(active, key string) string {
	if active == key {
		return "nav-link active"
	}
	return "nav-link"
}

func markdownHTML(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Markdown(md).Render(context.Background(), &buf); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}

// RelatedProjects returns projects that share at least one technology with current.
func RelatedProjects(current projects.Project, all []projects.Project) []projects.Project {
	techs := make(map[string]struct{})
	for _, t := range current.Technologies {
		tech := strings.ToLower(strings.TrimSpace(t))
		if tech != "" {
			techs[tech] = struct{}{}
		}
	}
	var related []projects.Project
	for _, p := range all {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Technologies {
			if _, ok := techs[strings.ToLower(strings.TrimSpace(t))]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}
