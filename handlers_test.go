package folio

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPagesRender(t *testing.T) {
	ta := newTestApp(t, SiteConfig{Author: "Ada Lovelace"})
	tests := []struct {
		path  string
		title string
	}{
		{"/", "Portfolio - Home"},
		{"/about", "Portfolio - About"},
		{"/projects", "Portfolio - Projects"},
		{"/projects/portfolio-website", "Portfolio - Portfolio Website"},
		{"/contact", "Portfolio - Contact"},
		{"/resume", "Portfolio - Resume"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ta.get(tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if ct := rec.Header().Get(echo.HeaderContentType); ct != echo.MIMETextHTMLCharsetUTF8 {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "<title>"+tt.title+"</title>") {
				t.Errorf("missing title %q", tt.title)
			}
			if !strings.Contains(body, `"name":"Ada Lovelace"`) {
				t.Error("missing person JSON-LD")
			}
		})
	}
}

func TestProjectPageShowsWriteup(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	body := ta.get("/projects/portfolio-website").Body.String()
	if !strings.Contains(body, "<h2>Overview</h2>") {
		t.Error("project write-up not rendered")
	}
	if !strings.Contains(body, `og:type" content="article"`) {
		t.Error("project page should be an article")
	}
}

func TestNotFoundPages(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	tests := []struct {
		path  string
		title string
	}{
		{"/nope", "404 - Page Not Found"},
		{"/projects/missing", "404 - Project Not Found"},
		{"/api/unknown", "404 - Page Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ta.get(tt.path)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "<title>"+tt.title+"</title>") {
				t.Errorf("missing title %q", tt.title)
			}
		})
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	rec := ta.get("/about/")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/about" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSecurityHeaders(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	rec := ta.get("/")
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
}

func TestCORSOnAPI(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set(echo.HeaderOrigin, "https://elsewhere.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := ta.do(req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestStaticRoutes(t *testing.T) {
	ta := newTestApp(t, SiteConfig{URL: "https://folio.example"})

	rec := ta.get("/robots.txt")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Sitemap: https://folio.example/sitemap.xml") {
		t.Errorf("robots.txt = %d %q", rec.Code, rec.Body.String())
	}

	rec = ta.get("/favicon.svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("favicon = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/svg+xml" {
		t.Errorf("favicon Content-Type = %q", ct)
	}

	rec = ta.get("/public/main.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "portfolioUtils") {
		t.Errorf("main.js = %d", rec.Code)
	}
}

func TestFaviconPrefersStaticDir(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	own := `<svg id="own"></svg>`
	if err := os.WriteFile(filepath.Join(ta.staticDir, "favicon.svg"), []byte(own), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := ta.get("/favicon.svg")
	if rec.Code != http.StatusOK || rec.Body.String() != own {
		t.Errorf("favicon = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSitemap(t *testing.T) {
	ta := newTestApp(t, SiteConfig{URL: "https://folio.example"})
	rec := ta.get("/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://folio.example/</loc>",
		"<loc>https://folio.example/resume</loc>",
		"<loc>https://folio.example/projects/portfolio-website</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %s", want)
		}
	}
}

// csrfCookie fetches the contact page and returns the CSRF cookie it sets.
func csrfCookie(t *testing.T, ta *testApp) *http.Cookie {
	t.Helper()
	rec := ta.get("/contact")
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			return c
		}
	}
	t.Fatal("contact page did not set a CSRF cookie")
	return nil
}

func postContactForm(ta *testApp, csrf *http.Cookie, vals map[string]string) *httptest.ResponseRecorder {
	if csrf != nil {
		vals["_csrf"] = csrf.Value
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", formBody(vals))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if csrf != nil {
		req.AddCookie(csrf)
	}
	return ta.do(req)
}

func followFlash(t *testing.T, ta *testApp, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/contact" {
		t.Fatalf("status = %d location = %q, want 303 /contact", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return ta.do(req).Body.String()
}

func TestContactFormFallback(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	csrf := csrfCookie(t, ta)
	rec := postContactForm(ta, csrf, map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello",
	})
	body := followFlash(t, ta, rec)
	if !strings.Contains(body, "Thank you for your message!") || !strings.Contains(body, "alert-success") {
		t.Error("success flash not shown")
	}
	if ta.mail.count() != 1 {
		t.Errorf("sent %d messages, want 1", ta.mail.count())
	}
}

func TestContactFormFallbackValidation(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	csrf := csrfCookie(t, ta)
	rec := postContactForm(ta, csrf, map[string]string{"name": "Ada"})
	body := followFlash(t, ta, rec)
	if !strings.Contains(body, msgContactRequired) || !strings.Contains(body, "alert-danger") {
		t.Error("validation flash not shown")
	}
}

func TestContactFormRequiresCSRF(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	rec := postContactForm(ta, nil, map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if ta.mail.count() != 0 {
		t.Error("message relayed without CSRF token")
	}
}

func TestContactFormSharesContactLimit(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	for i := 0; i < 3; i++ {
		ta.do(contactRequest(validContact))
	}
	csrf := csrfCookie(t, ta)
	rec := postContactForm(ta, csrf, map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "Hello",
	})
	if rec.Header().Get(echo.HeaderRetryAfter) == "" {
		t.Error("missing Retry-After")
	}
	body := followFlash(t, ta, rec)
	if !strings.Contains(body, "Too many contact form submissions") {
		t.Error("limit flash not shown")
	}
}

func failingRoutes(a *App) {
	a.Echo.GET("/boom", func(c echo.Context) error { return errors.New("database on fire") })
	a.Echo.GET("/api/boom", func(c echo.Context) error { return errors.New("database on fire") })
}

func TestServerErrorPage(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		ta := newTestApp(t, SiteConfig{}, WithCustomRoutes(failingRoutes))
		rec := ta.get("/boom")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "<title>500 - Server Error</title>") || !strings.Contains(body, "database on fire") {
			t.Error("development error page should show the error")
		}
	})
	t.Run("production", func(t *testing.T) {
		ta := newTestApp(t, SiteConfig{Env: "production"}, WithCustomRoutes(failingRoutes))
		body := ta.get("/boom").Body.String()
		if strings.Contains(body, "database on fire") || !strings.Contains(body, msgGeneric) {
			t.Error("production error page should hide the error")
		}
	})
}

func TestAPIServerError(t *testing.T) {
	ta := newTestApp(t, SiteConfig{Env: "production"}, WithCustomRoutes(failingRoutes))
	rec := ta.get("/api/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeJSON(t, rec); body["success"] != false || body["error"] != msgGeneric {
		t.Errorf("body = %v", body)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	rec := ta.get("/api/contact")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if body := decodeJSON(t, rec); body["success"] != false {
		t.Errorf("body = %v", body)
	}
}
