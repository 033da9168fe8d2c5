package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "config_updates_total",
		Help: "Total number of configuration values written.",
	})
	listCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "config_list_cache_lookups_total",
		Help: "Configuration list cache lookups by result.",
	}, []string{"result"}) // hit, miss, error
	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "config_update_publish_failures_total",
		Help: "Config update events that could not be published after a successful write.",
	})
)
