package folio

import (
	"encoding/json"
	"net/url"
	"path"
)

// BuildURL joins a base URL with path segments. Only the site root keeps a
// trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// PersonJsonLD returns a JSON-LD string for the Person schema of the site
// owner, falling back to the site name when no author is configured.
func PersonJsonLD(cfg SiteConfig) string {
	name := cfg.Author
	if name == "" {
		name = cfg.Name
	}
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
		"url":      BuildURL(cfg.URL),
		"mainEntityOfPage": map[string]string{
			"@type": "WebSite",
			"name":  cfg.Name,
		},
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
