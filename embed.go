package folio

import "embed"

// EmbeddedAssets contains static assets shipped with the site:
// main.js and the fallback favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
