package models

import "time"

// SystemMetrics is a lightweight snapshot of service instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CompilesTotal            uint64    `json:"compiles_total"`
	CompileFailures          uint64    `json:"compile_failures"`
	AverageCompileDurationMs float64   `json:"average_compile_duration_ms"`
	PagesCompiled            uint64    `json:"pages_compiled"`
	QueueDepth               int       `json:"queue_depth"`
	QueueInFlight            int       `json:"queue_in_flight"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
