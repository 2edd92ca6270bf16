package folio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	glog "github.com/labstack/gommon/log"

	"github.com/eringen/folio/mailer"
	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/storage"
)

var testNow = time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type putCall struct {
	key         string
	data        []byte
	contentType string
}

type fakeObjectStore struct {
	mu   sync.Mutex
	puts []putCall
	err  error
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Object, error) {
	if s.err != nil {
		return storage.Object{}, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	if int64(len(data)) != size {
		return storage.Object{}, errors.New("size mismatch")
	}
	s.mu.Lock()
	s.puts = append(s.puts, putCall{key: key, data: data, contentType: contentType})
	s.mu.Unlock()
	return storage.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

type testApp struct {
	*App
	mail    *fakeMailer
	objects *fakeObjectStore
}

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *testApp {
	t.Helper()
	if cfg.ContactEmail == "" {
		cfg.ContactEmail = "owner@example.com"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "test-secret"
	}
	ta := &testApp{mail: &fakeMailer{}, objects: &fakeObjectStore{}}
	opts = append([]Option{
		WithMailer(ta.mail),
		WithObjectStore(ta.objects),
		WithProjects(projects.NewMemory(projects.Default())),
		WithStaticDir(t.TempDir()),
	}, opts...)
	ta.App = New(cfg, opts...)
	ta.now = func() time.Time { return testNow }
	ta.Echo.Logger.SetLevel(glog.OFF)
	if err := ta.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { ta.Close() })
	return ta
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.Echo.ServeHTTP(rec, req)
	return rec
}

func (ta *testApp) get(path string) *httptest.ResponseRecorder {
	return ta.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(SiteConfig{})
	if a.Config.Name != "Portfolio" || a.Config.Addr != ":3000" {
		t.Errorf("defaults not applied: %+v", a.Config)
	}
	if a.Views.Home == nil || a.Views.ServerError == nil {
		t.Error("views should default to the views package")
	}
}

func TestInitGeneratesSessionSecret(t *testing.T) {
	a := New(SiteConfig{},
		WithMailer(&fakeMailer{}),
		WithObjectStore(&fakeObjectStore{}),
		WithProjects(projects.NewMemory(nil)),
	)
	a.Echo.Logger.SetLevel(glog.OFF)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Close()
	if len(a.Config.SessionSecret) != 64 {
		t.Errorf("session secret = %q, want 64 hex chars", a.Config.SessionSecret)
	}
}

func TestInitRejectsNonPositiveWindow(t *testing.T) {
	a := New(SiteConfig{Limits: LimitsConfig{ContactWindow: Duration{-time.Minute}}},
		WithMailer(&fakeMailer{}),
		WithObjectStore(&fakeObjectStore{}),
		WithProjects(projects.NewMemory(nil)),
	)
	a.Echo.Logger.SetLevel(glog.OFF)
	defer a.Close()
	err := a.Init()
	if err == nil || !strings.Contains(err.Error(), "limits.contact_window") {
		t.Fatalf("Init = %v, want a window error", err)
	}
}

func TestInitBuildsDefaultDependencies(t *testing.T) {
	a := New(SiteConfig{Storage: StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"}})
	a.Echo.Logger.SetLevel(glog.OFF)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer a.Close()
	if _, ok := a.mailer.(*mailer.Relay); !ok {
		t.Errorf("mailer = %T, want *mailer.Relay", a.mailer)
	}
	if _, ok := a.objects.(*storage.Client); !ok {
		t.Errorf("objects = %T, want *storage.Client", a.objects)
	}
	list, err := a.Projects.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("projects = %v, %v; want built-in list", list, err)
	}
}

func TestOpenProjectsSeedsDatabaseFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "projects.yaml")
	doc := "projects:\n  - slug: cli\n    title: CLI Tool\n    technologies: [Go]\n"
	if err := os.WriteFile(file, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := SiteConfig{Projects: ProjectsConfig{File: file, Database: filepath.Join(dir, "data", "projects.db")}}

	repo, closer, err := OpenProjects(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenProjects: %v", err)
	}
	if closer == nil {
		t.Fatal("expected a closer for the database")
	}
	defer closer.Close()

	p, err := repo.Get(context.Background(), "cli")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Title != "CLI Tool" || len(p.Technologies) != 1 {
		t.Errorf("project = %+v", p)
	}
}

func TestOpenProjectsFallsBackToBuiltIn(t *testing.T) {
	repo, closer, err := OpenProjects(context.Background(), SiteConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if closer != nil {
		t.Error("built-in list should not need closing")
	}
	if _, err := repo.Get(context.Background(), "portfolio-website"); err != nil {
		t.Errorf("Get built-in: %v", err)
	}
}

func TestOpenProjectsBadFile(t *testing.T) {
	_, _, err := OpenProjects(context.Background(), SiteConfig{Projects: ProjectsConfig{File: "/nonexistent/projects.yaml"}})
	if err == nil {
		t.Fatal("expected error for missing projects file")
	}
}

func TestHandler(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	h, err := ta.Handler()
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ta := newTestApp(t, SiteConfig{})
	rec := ta.get("/api/health")
	if id := rec.Header().Get("X-Request-Id"); len(id) != 36 {
		t.Errorf("X-Request-Id = %q, want a UUID", id)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"http://localhost:3000", nil, "http://localhost:3000/"},
		{"https://example.com/", []string{"projects", "cli"}, "https://example.com/projects/cli"},
		{"https://example.com/base", []string{"about"}, "https://example.com/base/about"},
		{"https://example.com", []string{"/contact"}, "https://example.com/contact"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestPersonJsonLD(t *testing.T) {
	var data map[string]any
	if err := json.Unmarshal([]byte(PersonJsonLD(SiteConfig{Name: "Folio", URL: "https://example.com", Author: "Sam"})), &data); err != nil {
		t.Fatal(err)
	}
	if data["@type"] != "Person" || data["name"] != "Sam" || data["url"] != "https://example.com/" {
		t.Errorf("json-ld = %v", data)
	}
}

func formBody(vals map[string]string) io.Reader {
	form := url.Values{}
	for k, v := range vals {
		form.Set(k, v)
	}
	return strings.NewReader(form.Encode())
}
