package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProjectsTable(t *testing.T) {
	out, err := run(t, "projects", "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "SLUG") || !strings.Contains(out, "portfolio-website") {
		t.Errorf("output = %q", out)
	}
}

func TestProjectsYAMLFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "projects.yaml")
	if err := os.WriteFile(file, []byte("projects:\n  - slug: cli\n    title: CLI Tool\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROJECTS_FILE", file)

	out, err := run(t, "projects", "-o", "yaml", "-c", filepath.Join(dir, "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "slug: cli") || !strings.Contains(out, "title: CLI Tool") {
		t.Errorf("output = %q", out)
	}
}

func TestProjectsUnknownFormat(t *testing.T) {
	if _, err := run(t, "projects", "-o", "xml", "-c", filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestProjectsSeed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROJECTS_DB", filepath.Join(dir, "projects.db"))
	cfg := filepath.Join(dir, "none.toml")

	out, err := run(t, "projects", "seed", "-c", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "seeded 1 projects") {
		t.Errorf("first seed output = %q", out)
	}
	out, err = run(t, "projects", "seed", "-c", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "nothing to do") {
		t.Errorf("second seed output = %q", out)
	}
}

func TestProjectsSeedNeedsDatabase(t *testing.T) {
	if _, err := run(t, "projects", "seed", "-c", filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("expected error without a database")
	}
}

func TestConfigRedactsSecrets(t *testing.T) {
	t.Setenv("SMTP_PASS", "hunter2")
	t.Setenv("SESSION_SECRET", "s3cret")
	out, err := run(t, "config", "-c", filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "hunter2") || strings.Contains(out, "s3cret") {
		t.Errorf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, `password = "********"`) {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, `contact_window = "1h0m0s"`) {
		t.Errorf("durations should print as strings: %s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "folio dev\n" {
		t.Errorf("output = %q", out)
	}
}
