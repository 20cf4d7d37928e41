// Package metric provides Prometheus metrics for gymadmin.
//
//   - prometheus.go: registry with HTTP, session, store and scanner metrics
//   - collector.go: StoreCollector exporting cache sizes on scrape
//
// The registry is served by `qr scan --metrics-addr` for kiosk deployments.
package metric
