package soopify

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soopify/site/mail"
	"github.com/soopify/site/objectstore"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "Soopify")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr     string // Listen address (default ":3000")
	LogLevel string // debug, info, warn or error (default "info")

	AdminEmail    string // Required: admin login e-mail
	AdminPassword string // Required: admin login password
	SessionSecret string // Required: cookie signing secret
	CookieSecure  bool   // Set true for HTTPS

	Backend BackendConfig
	Mail    mail.Config
	Storage objectstore.Config

	InsightCacheTTL   time.Duration // Featured strip cache TTL (default 5min)
	ContactRateLimit  int           // Contact submissions per IP per window; 0 or less disables the limit
	ContactRateWindow time.Duration // (default 10min when the limit is on)
}

// BackendConfig describes the two credential tiers of the data backend.
type BackendConfig struct {
	URL        string // restricted tier; postgres:// or sqlite:///path
	ServiceDSN string // privileged tier; defaults to URL
	Migrate    *bool  // create tables on start; defaults to true for SQLite only
}

// ServiceURL returns the privileged-tier DSN.
func (b BackendConfig) ServiceURL() string {
	if b.ServiceDSN != "" {
		return b.ServiceDSN
	}
	return b.URL
}

// ShouldMigrate reports whether tables are created on start.
func (b BackendConfig) ShouldMigrate() bool {
	if b.Migrate != nil {
		return *b.Migrate
	}
	return !isPostgresURL(b.ServiceURL())
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Soopify"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Backend.URL == "" {
		c.Backend.URL = "sqlite:///data/soopify.db"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "public/uploads"
	}
	if c.Storage.LocalBaseURL == "" {
		c.Storage.LocalBaseURL = c.URL + "/public/uploads"
	}
	if c.InsightCacheTTL == 0 {
		c.InsightCacheTTL = 5 * time.Minute
	}
	if c.ContactRateLimit > 0 && c.ContactRateWindow == 0 {
		c.ContactRateWindow = 10 * time.Minute
	}
}

// ConfigFromEnv builds a SiteConfig from environment variables. Unset values
// are filled in by New.
func ConfigFromEnv() SiteConfig {
	cfg := SiteConfig{
		Name:        os.Getenv("SITE_NAME"),
		URL:         os.Getenv("SITE_URL"),
		Description: os.Getenv("SITE_DESCRIPTION"),
		Addr:        os.Getenv("ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", false),

		Backend: BackendConfig{
			URL:        os.Getenv("DATABASE_URL"),
			ServiceDSN: os.Getenv("DATABASE_SERVICE_URL"),
		},
		Mail: mail.Config{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			From:         os.Getenv("CONTACT_FROM_EMAIL"),
			To:           getEnvAsSlice("CONTACT_TO_EMAIL"),
		},
		Storage: objectstore.Config{
			CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
			CloudinaryFolder: EnvOr("CLOUDINARY_FOLDER", "soopify"),
			LocalDir:         os.Getenv("UPLOAD_DIR"),
		},

		InsightCacheTTL:   getEnvAsDuration("INSIGHT_CACHE_TTL", 0),
		ContactRateLimit:  getEnvAsInt("CONTACT_RATE_LIMIT", 0),
		ContactRateWindow: getEnvAsDuration("CONTACT_RATE_WINDOW", 0),
	}
	if v := os.Getenv("DATABASE_MIGRATE"); v != "" {
		migrate := getEnvAsBool("DATABASE_MIGRATE", false)
		cfg.Backend.Migrate = &migrate
	}
	return cfg
}

// Option configures additional App behavior.
type Option func(*App)

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses an already connected backend instead of opening
// Config.Backend.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithMailer overrides the sender built from Config.Mail.
func WithMailer(m mail.Sender) Option {
	return func(a *App) {
		a.Mailer = m
	}
}

// WithObjectStore overrides the object store built from Config.Storage.
func WithObjectStore(o objectstore.Store) Option {
	return func(a *App) {
		a.Objects = o
	}
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return FilterEmpty(strings.Split(v, ","))
}
