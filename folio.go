// Package folio is a personal portfolio site built with Go, Echo, and templ.
// It serves the public pages, a rate-limited contact endpoint that relays
// messages over SMTP, and an image upload endpoint backed by S3-compatible
// object storage.
//
// Pages are rendered through the ViewFuncs struct, which defaults to the
// views package but can be replaced per component.
package folio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"

	"github.com/eringen/folio/mailer"
	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/storage"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the components handlers render. Nil fields fall back to
// the views package.
type ViewFuncs struct {
	Home        func(views.Page) templ.Component
	About       func(views.Page) templ.Component
	Projects    func(views.Page) templ.Component
	Project     func(views.Page) templ.Component
	Contact     func(views.Page) templ.Component
	Resume      func(views.Page) templ.Component
	NotFound    func(views.Page) templ.Component
	ServerError func(views.Page) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.About == nil {
		v.About = views.About
	}
	if v.Projects == nil {
		v.Projects = views.Projects
	}
	if v.Project == nil {
		v.Project = views.Project
	}
	if v.Contact == nil {
		v.Contact = views.Contact
	}
	if v.Resume == nil {
		v.Resume = views.Resume
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// Mailer delivers a contact message. *mailer.Relay implements it.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ObjectStore stores an uploaded object and returns where it can be fetched.
// *storage.Client implements it.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.Object, error)
}

// App is the central folio application. It wires together the project
// cache, mail relay, object storage, limiters, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Projects *projects.Cache
	Views    ViewFuncs

	mailer        Mailer
	objects       ObjectStore
	projectSource projects.Repository

	contactLimiter *RateLimiter
	uploadLimiter  *RateLimiter

	customRoutes []func(*App)
	staticDir    string
	now          func() time.Time

	initOnce sync.Once
	initErr  error
	closers  []io.Closer
}

// New creates a folio App. Dependencies not supplied through options are
// built from cfg when the App is initialized.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
		now:       time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetPrefix("folio")
	if cfg.IsProduction() {
		a.Echo.Logger.SetLevel(glog.INFO)
	} else {
		a.Echo.Logger.SetLevel(glog.DEBUG)
	}

	for _, opt := range opts {
		opt(a)
	}
	a.Views.setDefaults()

	return a
}

// Init builds the dependencies, middleware and routes. It runs once; Start
// and Handler call it.
func (a *App) Init() error {
	a.initOnce.Do(func() {
		a.initErr = a.build()
	})
	return a.initErr
}

func (a *App) build() error {
	logger := a.Echo.Logger

	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("folio: %w", err)
	}

	if a.Config.SessionSecret == "" {
		a.Config.SessionSecret = randomSecret()
		logger.Warn("folio: SESSION_SECRET not set, sessions will not survive a restart")
	}

	if a.mailer == nil {
		a.mailer = mailer.New(mailer.Config{
			Host:     a.Config.SMTP.Host,
			Port:     a.Config.SMTP.Port,
			Username: a.Config.SMTP.User,
			Password: a.Config.SMTP.Password,
			Timeout:  a.Config.MailTimeout.Duration,
		}, logger)
		if a.Config.SMTP.Host == "" {
			logger.Warn("folio: SMTP_HOST not set, contact messages will fail")
		}
	}

	if a.objects == nil {
		client, err := storage.New(storage.Config{
			Region:        a.Config.Storage.Region,
			AccessKey:     a.Config.Storage.AccessKey,
			SecretKey:     a.Config.Storage.SecretKey,
			Bucket:        a.Config.Storage.Bucket,
			Endpoint:      a.Config.Storage.Endpoint,
			PublicBaseURL: a.Config.Storage.PublicBaseURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("folio: init storage: %w", err)
		}
		a.objects = client
	}

	if a.projectSource == nil {
		repo, closer, err := OpenProjects(context.Background(), a.Config)
		if err != nil {
			return fmt.Errorf("folio: init projects: %w", err)
		}
		a.projectSource = repo
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}
	a.Projects = projects.NewCache(a.projectSource, a.Config.ProjectsTTL.Duration)

	a.contactLimiter = NewRateLimiter(a.Config.Limits.ContactMax, a.Config.Limits.ContactWindow.Duration)
	a.uploadLimiter = NewRateLimiter(a.Config.Limits.UploadMax, a.Config.Limits.UploadWindow.Duration)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded client script, served ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/main.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Pages
	e.GET("/", a.handleHome)
	e.GET("/about", a.handleAbout)
	e.GET("/projects", a.handleProjects)
	e.GET("/projects/:slug", a.handleProject)
	e.GET("/contact", a.handleContact)
	e.POST("/contact", a.handleContactForm, a.contactLimiter.Middleware(a.contactFormLimited))
	e.GET("/resume", a.handleResume)

	// API
	api := e.Group("/api")
	api.POST("/contact", a.handleContactAPI, a.contactLimiter.Middleware(limitJSON(msgContactLimited)))
	api.POST("/upload", a.handleUpload, a.uploadLimiter.Middleware(limitJSON(msgUploadLimited)))
	api.GET("/projects", a.handleProjectsAPI)
	api.GET("/health", a.handleHealth)
}

// OpenProjects returns the project repository cfg selects: a SQLite
// database seeded from the YAML file or the built-in list, a YAML file, or
// the built-in list. The returned closer is nil unless a database was opened.
func OpenProjects(ctx context.Context, cfg SiteConfig) (projects.Repository, io.Closer, error) {
	seed := projects.NewMemory(projects.Default())
	if cfg.Projects.File != "" {
		m, err := projects.LoadFile(cfg.Projects.File)
		if err != nil {
			return nil, nil, err
		}
		seed = m
	}

	if cfg.Projects.Database == "" {
		return seed, nil, nil
	}

	list, err := seed.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, err := projects.NewStore(cfg.Projects.Database)
	if err != nil {
		return nil, nil, err
	}
	if _, err := store.Seed(ctx, list); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store, nil
}

// Handler returns the initialized Echo instance as an http.Handler.
func (a *App) Handler() (http.Handler, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a.Echo, nil
}

// Start initializes the app and blocks serving on Config.Addr until the
// server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("folio: listening on %s (%s)", a.Config.Addr, a.Config.Env)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, waits for in-flight requests until
// ctx is done and then releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.uploadLimiter != nil {
		a.uploadLimiter.Stop()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("folio: read random secret: %v", err))
	}
	return hex.EncodeToString(b)
}
