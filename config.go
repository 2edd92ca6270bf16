package folio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/eringen/folio/projects"
)

// DefaultConfigFile is read by LoadConfig when no explicit path is given.
const DefaultConfigFile = "folio.toml"

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name   string `toml:"name"`   // Site name (default "Portfolio")
	URL    string `toml:"url"`    // Canonical URL (default "http://localhost:3000")
	Author string `toml:"author"` // Person name for JSON-LD and the footer
	Env    string `toml:"env"`    // "production" hides error details (default "development")

	Addr string `toml:"addr"` // Listen address (default ":3000")

	SessionSecret string `toml:"session_secret"` // Random per process when empty
	CookieSecure  bool   `toml:"cookie_secure"`  // Set true for HTTPS

	ContactEmail string `toml:"contact_email"` // Operator address contact mail goes to

	SMTP     SMTPConfig     `toml:"smtp"`
	Storage  StorageConfig  `toml:"storage"`
	Projects ProjectsConfig `toml:"projects"`
	Limits   LimitsConfig   `toml:"limits"`

	MailTimeout    Duration `toml:"mail_timeout"`    // default 10s
	StorageTimeout Duration `toml:"storage_timeout"` // default 30s
	ProjectsTTL    Duration `toml:"projects_ttl"`    // default 5m
}

// SMTPConfig configures the contact relay.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// StorageConfig configures the object storage bucket uploads go to.
type StorageConfig struct {
	Region        string `toml:"region"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	Bucket        string `toml:"bucket"`
	Endpoint      string `toml:"endpoint"`
	PublicBaseURL string `toml:"public_base_url"`
}

// ProjectsConfig selects where project data comes from. Both empty means the
// built-in list.
type ProjectsConfig struct {
	File     string `toml:"file"`
	Database string `toml:"database"`
}

// LimitsConfig holds the request and upload policy.
type LimitsConfig struct {
	ContactMax     int      `toml:"contact_max"`
	ContactWindow  Duration `toml:"contact_window"`
	UploadMax      int      `toml:"upload_max"`
	UploadWindow   Duration `toml:"upload_window"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
}

// Duration is a time.Duration that decodes from strings like "15m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsProduction reports whether the site runs with production error handling.
func (c SiteConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.SMTP.Port == "" {
		c.SMTP.Port = "587"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Limits.ContactMax == 0 {
		c.Limits.ContactMax = 3
	}
	if c.Limits.ContactWindow.Duration == 0 {
		c.Limits.ContactWindow.Duration = time.Hour
	}
	if c.Limits.UploadMax == 0 {
		c.Limits.UploadMax = 5
	}
	if c.Limits.UploadWindow.Duration == 0 {
		c.Limits.UploadWindow.Duration = 15 * time.Minute
	}
	if c.Limits.MaxUploadBytes == 0 {
		c.Limits.MaxUploadBytes = 5 << 20
	}
	if c.MailTimeout.Duration == 0 {
		c.MailTimeout.Duration = 10 * time.Second
	}
	if c.StorageTimeout.Duration == 0 {
		c.StorageTimeout.Duration = 30 * time.Second
	}
	if c.ProjectsTTL.Duration == 0 {
		c.ProjectsTTL.Duration = 5 * time.Minute
	}
}

// LoadConfig builds a SiteConfig from defaults, the TOML file at path and
// the environment, in that order of precedence. A missing file is not an
// error; an empty path means DefaultConfigFile.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := loadFileIfExists(path, &cfg); err != nil {
		return SiteConfig{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// validate rejects limits that setDefaults leaves alone but no limiter or
// upload check can work with.
func (c SiteConfig) validate() error {
	ints := []struct {
		key string
		v   int64
	}{
		{"limits.contact_max", int64(c.Limits.ContactMax)},
		{"limits.upload_max", int64(c.Limits.UploadMax)},
		{"limits.max_upload_bytes", c.Limits.MaxUploadBytes},
	}
	for _, it := range ints {
		if it.v <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %d", it.key, it.v)
		}
	}
	durations := []struct {
		key string
		v   Duration
	}{
		{"limits.contact_window", c.Limits.ContactWindow},
		{"limits.upload_window", c.Limits.UploadWindow},
		{"mail_timeout", c.MailTimeout},
		{"storage_timeout", c.StorageTimeout},
		{"projects_ttl", c.ProjectsTTL},
	}
	for _, it := range durations {
		if it.v.Duration <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %s", it.key, it.v.Duration)
		}
	}
	return nil
}

func loadFileIfExists(path string, cfg *SiteConfig) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// EnvOr returns the trimmed value of the environment variable key, or
// fallback if it is unset or blank.
func EnvOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func applyEnv(cfg *SiteConfig) error {
	setString := func(key string, dst *string) {
		*dst = EnvOr(key, *dst)
	}
	setString("SITE_NAME", &cfg.Name)
	setString("SITE_URL", &cfg.URL)
	setString("SITE_AUTHOR", &cfg.Author)
	setString("APP_ENV", &cfg.Env)
	setString("SESSION_SECRET", &cfg.SessionSecret)
	setString("CONTACT_EMAIL", &cfg.ContactEmail)
	setString("SMTP_HOST", &cfg.SMTP.Host)
	setString("SMTP_PORT", &cfg.SMTP.Port)
	setString("SMTP_USER", &cfg.SMTP.User)
	setString("SMTP_PASS", &cfg.SMTP.Password)
	setString("AWS_REGION", &cfg.Storage.Region)
	setString("AWS_ACCESS_KEY_ID", &cfg.Storage.AccessKey)
	setString("AWS_SECRET_ACCESS_KEY", &cfg.Storage.SecretKey)
	setString("AWS_S3_BUCKET_NAME", &cfg.Storage.Bucket)
	setString("S3_ENDPOINT", &cfg.Storage.Endpoint)
	setString("CDN_BASE_URL", &cfg.Storage.PublicBaseURL)
	setString("PROJECTS_FILE", &cfg.Projects.File)
	setString("PROJECTS_DB", &cfg.Projects.Database)

	if port := EnvOr("PORT", ""); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if raw := EnvOr("COOKIE_SECURE", ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CONTACT_RATE_MAX", &cfg.Limits.ContactMax},
		{"UPLOAD_RATE_MAX", &cfg.Limits.UploadMax},
	}
	for _, it := range ints {
		raw := EnvOr(it.key, "")
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", it.key, raw)
		}
		*it.dst = v
	}

	durations := []struct {
		key string
		dst *Duration
	}{
		{"CONTACT_RATE_WINDOW", &cfg.Limits.ContactWindow},
		{"UPLOAD_RATE_WINDOW", &cfg.Limits.UploadWindow},
	}
	for _, it := range durations {
		raw := EnvOr(it.key, "")
		if raw == "" {
			continue
		}
		if err := it.dst.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("%s: %w", it.key, err)
		}
	}

	if raw := EnvOr("UPLOAD_MAX_BYTES", ""); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("UPLOAD_MAX_BYTES must be a positive integer, got %q", raw)
		}
		cfg.Limits.MaxUploadBytes = v
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are mounted.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithMailer replaces the SMTP relay built from SiteConfig.SMTP.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithObjectStore replaces the object storage client built from SiteConfig.Storage.
func WithObjectStore(s ObjectStore) Option {
	return func(a *App) {
		a.objects = s
	}
}

// WithProjects replaces the project repository built from SiteConfig.Projects.
func WithProjects(r projects.Repository) Option {
	return func(a *App) {
		a.projectSource = r
	}
}
