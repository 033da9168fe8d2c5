package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_config_saves_total",
		Help: "Save attempts from the edit dialog by result.",
	}, []string{"result"}) // saved, not_modified, failed
	listRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_list_refreshes_total",
		Help: "Manual reloads of the configuration list.",
	})
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "console_active_sessions",
		Help: "Console sessions currently held in memory.",
	})
	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "console_config_save_duration_seconds",
		Help:    "Time from submitting the dialog until the saved value is visible.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
	})
)
