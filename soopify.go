// Package soopify serves a small-business marketing site: a landing page with
// a contact form and a featured insight strip, an announcement board with
// attachments, and an admin area gated by a single configured credential.
//
// Templates are provided by the caller through ViewFuncs; soopify owns the
// JSON API, the page handlers, middleware and backend access.
package soopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/soopify/site/mail"
	"github.com/soopify/site/objectstore"
)

// DashboardStats summarizes the backend for the admin landing page.
type DashboardStats struct {
	Inquiries       int64
	Posts           int64
	Featured        int64
	RecentInquiries []Inquiry
}

// ViewFuncs holds the templ components the page handlers render.
type ViewFuncs struct {
	Home           func(meta PageMeta, insights []BlogPost) templ.Component
	Board          func(meta PageMeta, posts Page[Post], admin bool) templ.Component
	BoardPost      func(meta PageMeta, post Post, admin bool) templ.Component
	Editor         func(meta PageMeta, post Post) templ.Component // zero Post for a new announcement
	AdminLogin     func(meta PageMeta) templ.Component
	AdminDashboard func(meta PageMeta, stats DashboardStats) templ.Component
	AdminInquiries func(meta PageMeta, inquiries Page[Inquiry]) templ.Component
	AdminInsights  func(meta PageMeta, posts []BlogPost, featured int) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the backend store, mail sender, object storage, cache,
// handlers, middleware and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *InsightCache
	Mailer   mail.Sender
	Objects  objectstore.Store
	Views    ViewFuncs
	Registry *prometheus.Registry

	limiter     *RateLimiter
	metrics     *siteMetrics
	staticDir   string
	ownsStore   bool
	initialized bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, connects any backend not supplied as an
// option and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.AdminEmail == "" || a.Config.AdminPassword == "" {
		return errors.New("soopify: AdminEmail and AdminPassword are required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("soopify: SessionSecret is required")
	}
	if a.Config.ContactRateLimit > 0 && a.Config.ContactRateWindow <= 0 {
		return fmt.Errorf("soopify: ContactRateWindow must be positive, got %s", a.Config.ContactRateWindow)
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.Backend)
		if err != nil {
			return fmt.Errorf("soopify: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	if a.Mailer == nil {
		a.Mailer = mail.New(a.Config.Mail, a.Echo.Logger)
	}
	if a.Objects == nil {
		objects, err := objectstore.New(a.Config.Storage)
		if err != nil {
			return fmt.Errorf("soopify: init object storage: %w", err)
		}
		a.Objects = objects
	}

	a.Cache = NewInsightCache(a.Store, publicInsightLimit, a.Config.InsightCacheTTL)
	if a.Config.ContactRateLimit > 0 {
		a.limiter = NewRateLimiter(a.Config.ContactRateLimit, a.Config.ContactRateWindow)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = newSiteMetrics(a.Registry)
	registerStoreMetrics(a.Registry, a.Store)

	a.setupMiddleware()
	a.setupRoutes()

	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("soopify listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases resources opened by Init. A Store passed with WithStore is
// left open.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.ownsStore && a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
