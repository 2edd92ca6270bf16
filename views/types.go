package views

import (
	"html/template"

	"github.com/eringen/folio/projects"
)

// SiteInfo holds site-wide values every page renders in its layout.
type SiteInfo struct {
	Name   string
	URL    string
	Author string
	Year   int
	JSONLD template.JS // Person schema for the <head>
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the data every page template receives.
type Page struct {
	Site   SiteInfo
	Title  string
	Active string // nav key: home, about, projects, contact, resume
	Meta   PageMeta

	Projects []projects.Project
	Project  projects.Project

	// Contact page form state.
	CSRFToken  string
	Flash      string
	FlashError bool

	// Detail shown on the error page outside production.
	Message string
}

// Stat is a headline number on the about page.
type Stat struct {
	Number string
	Label  string
}

// Skill is one entry in a skill category, Level in percent.
type Skill struct {
	Name  string
	Level int
}

// SkillCategory groups skills on the about page.
type SkillCategory struct {
	Title  string
	Icon   string
	Skills []Skill
}

// Experience is one resume timeline entry.
type Experience struct {
	Period  string
	Role    string
	Company string
	Summary string
}
