// Package views renders the site's pages. Each page is an html/template file
// under templates/ paired with the shared layout and exposed as a
// templ.Component so handlers render every page the same way.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var files embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "about", "projects", "project", "contact", "resume", "notfound", "error"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
}

func page(name string, p Page) templ.Component {
	return templ.FromGoHTML(pages[name].Lookup("layout"), p)
}

// Home renders the landing page with featured projects.
func Home(p Page) templ.Component { return page("home", p) }

// About renders the about page with stats and the skill matrix.
func About(p Page) templ.Component { return page("about", p) }

// Projects renders the project grid.
func Projects(p Page) templ.Component { return page("projects", p) }

// Project renders a single project, its gallery and write-up.
func Project(p Page) templ.Component { return page("project", p) }

// Contact renders the contact form and any flash message.
func Contact(p Page) templ.Component { return page("contact", p) }

// Resume renders the experience timeline.
func Resume(p Page) templ.Component { return page("resume", p) }

// NotFound renders the 404 page.
func NotFound(p Page) templ.Component { return page("notfound", p) }

// ServerError renders the 500 page, including p.Message when set.
func ServerError(p Page) templ.Component { return page("error", p) }
