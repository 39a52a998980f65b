package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VideosPublished counts videos created through the API.
	VideosPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidtube_videos_published_total",
		Help: "Total number of videos published",
	})

	// ViewsRecorded counts watch events.
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidtube_views_recorded_total",
		Help: "Total number of video views recorded",
	})

	// ToggleOutcomes counts like and subscription toggles by target and outcome.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_toggle_outcomes_total",
		Help: "Like and subscription toggles by target and outcome",
	}, []string{"target", "outcome"})

	// MediaOperations counts media relay calls by operation and result.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_media_operations_total",
		Help: "Media relay operations by operation and result",
	}, []string{"operation", "result"})

	// WebSocketConnections is the number of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidtube_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped for slow or closed clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_websocket_backpressure_drops_total",
		Help: "Notification messages dropped due to full or closed client buffers",
	}, []string{"reason"})

	// NotificationsPublished counts published notification events by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_notifications_published_total",
		Help: "Notification events published by type",
	}, []string{"event_type"})
)

const metricsStartKey = "vidtube:metrics_start"

// RegisterGormMetrics hooks query latency observation into db's callback chains.
func RegisterGormMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(metricsStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(metricsStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		operation string
		register  func(string, func(*gorm.DB)) error
		registerA func(string, func(*gorm.DB)) error
	}{
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}
	for _, s := range steps {
		if err := s.register("metrics:before_"+s.operation, before); err != nil {
			return err
		}
		if err := s.registerA("metrics:after_"+s.operation, after(s.operation)); err != nil {
			return err
		}
	}
	return nil
}
