package models

import "time"

// SystemMetrics is a lightweight runtime snapshot exposed alongside the
// Prometheus endpoint for dashboard consumption.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	AggregationsTotal        uint64    `json:"aggregations_total"`
	AverageAggregationMs     float64   `json:"average_aggregation_ms"`
	SessionsIngested         uint64    `json:"sessions_ingested"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
