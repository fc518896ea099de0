// Package main (cmd/webapp-serving) implements the serving shell for the
// single-page UI.
//
// The shell composes the request router (user controllers, UI serving, SSR
// views, catch-all 404) with a managed HTTP listener and a Prometheus metrics
// side-listener. In development it lazily starts the asset-transformation
// engine backed by the external bundler dev process; in production it serves
// prebuilt static assets with an SPA fallback.
//
// On SIGINT/SIGTERM the shell closes the HTTP listener first, then shuts the
// development asset server down, and exits with code 0 on success or 1 when
// either step fails. Repeated signals while shutdown is in progress are
// ignored.
package main
