package projects

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the project listing.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Reads dominate; WAL lets them proceed while a seed or save is running.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    technologies TEXT NOT NULL,
    image_url TEXT NOT NULL,
    images TEXT NOT NULL,
    live_url TEXT NOT NULL,
    github_url TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT ''
);
`)
	return err
}

const projectColumns = `id, slug, title, description, technologies, image_url, images, live_url, github_url, category, body`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (Project, error) {
	var p Project
	var techs, images string
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &techs, &p.ImageURL, &images, &p.LiveURL, &p.GitHubURL, &p.Category, &p.Body); err != nil {
		return Project{}, err
	}
	p.Technologies = ParseList(techs)
	p.Images = ParseList(images)
	return p, nil
}

// List returns all projects ordered by id.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Get returns a single project by slug.
func (s *Store) Get(ctx context.Context, slug string) (Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save upserts a project keyed by slug.
func (s *Store) Save(ctx context.Context, p Project) error {
	return saveProject(ctx, s.db, p)
}

func saveProject(ctx context.Context, db execer, p Project) error {
	var id any
	if p.ID != 0 {
		id = p.ID
	}
	_, err := db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    technologies = excluded.technologies,
    image_url = excluded.image_url,
    images = excluded.images,
    live_url = excluded.live_url,
    github_url = excluded.github_url,
    category = excluded.category,
    body = excluded.body`,
		id, p.Slug, p.Title, p.Description, JoinList(p.Technologies), p.ImageURL, JoinList(p.Images),
		p.LiveURL, p.GitHubURL, p.Category, p.Body)
	return err
}

// Seed inserts list when the table is empty and reports whether it did.
// The check and the inserts share one transaction.
func (s *Store) Seed(ctx context.Context, list []Project) (bool, error) {
	if err := Validate(list); err != nil {
		return false, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	for _, p := range list {
		if err := saveProject(ctx, tx, p); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// JoinList encodes values as a comma-delimited string (e.g. ",Go,Echo,").
func JoinList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return "," + strings.Join(trimmed, ",") + ","
}

// ParseList splits a comma-delimited string written by JoinList.
func ParseList(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
