// Package api implements the inbound HTTP surface of alertbridge.
//
// New(...) returns an http.Handler that serves:
//
//	POST /api/alert          - alert webhook (also /api/alert_handler)
//	GET  /healthz            - liveness probe
//	GET  /metrics            - Prometheus exposition
//
// The webhook answers 400 "Invalid JSON" when the body does not parse and
// 200 "ok" otherwise. Delivery problems downstream are logged and counted,
// never reported to the caller.
package api
