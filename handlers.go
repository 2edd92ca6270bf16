package folio

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page returns the data shared by every page: site info, title, active nav
// key and canonical URL.
func (a *App) page(c echo.Context, title, active string) views.Page {
	return views.Page{
		Site: views.SiteInfo{
			Name:   a.Config.Name,
			URL:    a.Config.URL,
			Author: a.Config.Author,
			Year:   a.now().Year(),
			JSONLD: template.JS(PersonJsonLD(a.Config)),
		},
		Title:  title,
		Active: active,
		Meta: views.PageMeta{
			Description: fmt.Sprintf("%s by %s", a.Config.Name, a.authorName()),
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
			OGType:      "website",
		},
	}
}

func (a *App) authorName() string {
	if a.Config.Author != "" {
		return a.Config.Author
	}
	return a.Config.Name
}

// pageWithProjects is page plus the full project list.
func (a *App) pageWithProjects(c echo.Context, title, active string) (views.Page, error) {
	p := a.page(c, title, active)
	list, err := a.Projects.List(c.Request().Context())
	if err != nil {
		return p, err
	}
	p.Projects = list
	return p, nil
}

func (a *App) handleHome(c echo.Context) error {
	p, err := a.pageWithProjects(c, "Portfolio - Home", "home")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(p))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, a.Views.About(a.page(c, "Portfolio - About", "about")))
}

func (a *App) handleProjects(c echo.Context) error {
	p, err := a.pageWithProjects(c, "Portfolio - Projects", "projects")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Projects(p))
}

func (a *App) handleProject(c echo.Context) error {
	project, err := a.Projects.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return a.renderNotFound(c, "404 - Project Not Found")
		}
		return err
	}
	p, err := a.pageWithProjects(c, "Portfolio - "+project.Title, "projects")
	if err != nil {
		return err
	}
	p.Project = project
	p.Meta.Description = project.Description
	p.Meta.OGType = "article"
	return Render(c, a.Views.Project(p))
}

func (a *App) handleContact(c echo.Context) error {
	p := flashPage(c, a.page(c, "Portfolio - Contact", "contact"))
	return Render(c, a.Views.Contact(p))
}

func (a *App) handleResume(c echo.Context) error {
	return Render(c, a.Views.Resume(a.page(c, "Portfolio - Resume", "resume")))
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.Projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, list)
}

// handleFavicon serves the site's own favicon when the static directory has
// one and the embedded default otherwise.
func (a *App) handleFavicon(c echo.Context) error {
	if own := filepath.Join(a.staticDir, "favicon.svg"); fileExists(own) {
		return c.File(own)
	}
	data, err := EmbeddedAssets.ReadFile("embedded/favicon.svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", data)
}

func (a *App) handleRobots(c echo.Context) error {
	if own := filepath.Join(a.staticDir, "robots.txt"); fileExists(own) {
		return c.File(own)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /api/\n\n")
	b.WriteString("Sitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
