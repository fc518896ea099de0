// Package httpserver wraps the application router with a managed HTTP
// listener: liveness/readiness/drain endpoints for load balancers, request
// logging, Prometheus instrumentation, optional pprof, and graceful shutdown
// with a bounded drain window.
package httpserver
