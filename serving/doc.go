// Package serving provides the controller that delivers the single-page UI:
// prebuilt static assets with an SPA fallback in production, and the asset
// transformation dev server in development. Exactly one of its two routes is
// active in any given process, selected by the descriptors' environment scope.
package serving
