package domain

// OpsSnapshot is an aggregated view of client-side operational counters,
// served by GET /v1/metrics/summary for dashboards that cannot scrape
// Prometheus directly.
type OpsSnapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	ErrorRate         float64 `json:"errorRate"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	ResyncFailureRate float64 `json:"resyncFailureRate"`
	Period            string  `json:"period"`
}
