package soopify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// siteMetrics are the business counters exposed on /metrics next to the
// HTTP metrics recorded by echoprometheus.
type siteMetrics struct {
	contactSubmissions *prometheus.CounterVec
	loginAttempts      *prometheus.CounterVec
	uploads            *prometheus.CounterVec
	featuredToggles    *prometheus.CounterVec
}

func newSiteMetrics(reg prometheus.Registerer) *siteMetrics {
	f := promauto.With(reg)
	return &siteMetrics{
		contactSubmissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soopify",
				Name:      "contact_submissions_total",
				Help:      "Contact form submissions by result",
			},
			[]string{"result"},
		),
		loginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soopify",
				Name:      "admin_login_attempts_total",
				Help:      "Admin login attempts by result",
			},
			[]string{"result"},
		),
		uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soopify",
				Name:      "uploads_total",
				Help:      "Accepted and rejected uploads by kind and result",
			},
			[]string{"kind", "result"},
		),
		featuredToggles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "soopify",
				Name:      "featured_toggles_total",
				Help:      "Featured flag changes by result",
			},
			[]string{"result"},
		),
	}
}

// registerStoreMetrics exposes connection pool gauges for the privileged
// backend handle.
func registerStoreMetrics(reg prometheus.Registerer, s *Store) {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "soopify",
		Name:      "db_connections_in_use",
		Help:      "Backend connections currently in use",
	}, func() float64 {
		return float64(s.Stats().InUse)
	})
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "soopify",
		Name:      "db_connections_idle",
		Help:      "Idle backend connections",
	}, func() float64 {
		return float64(s.Stats().Idle)
	})
}
