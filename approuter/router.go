package approuter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/webapp-serving-backend/common"
	"github.com/ruteri/webapp-serving-backend/devserver"
	"github.com/ruteri/webapp-serving-backend/routing"
	"github.com/ruteri/webapp-serving-backend/serving"
	"go.uber.org/atomic"
)

// ViewFunc renders a server-side page body for the incoming URL path. The
// returned markup is injected into the HTML template's mount element.
type ViewFunc func(urlPath string) (string, error)

// Config wires the router's collaborators.
type Config struct {
	// Env is the active runtime environment, read once at startup.
	Env common.Environment

	// Controllers are the user-supplied controllers, registered first in the
	// order given.
	Controllers []routing.Controller

	// Serving is the UI serving controller, registered after Controllers.
	Serving *serving.Controller

	// Assets is the development asset server; shut down after the listener
	// closes, development only.
	Assets *devserver.AssetServer

	// Views maps URL paths to server-rendered pages. Registered only outside
	// development, where the asset server owns all UI paths.
	Views map[string]ViewFunc

	// Template is the HTML document wrapping server-rendered views. Defaults
	// to DefaultTemplate.
	Template string

	Log *slog.Logger
}

// Router orchestrates route registration and shutdown for the application.
type Router struct {
	cfg       Config
	registrar *routing.Registrar
	mux       chi.Router
	log       *slog.Logger

	shuttingDown atomic.Bool
}

// New creates the router. Initialize must be called before serving traffic.
func New(cfg Config) *Router {
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	return &Router{
		cfg:       cfg,
		registrar: routing.NewRegistrar(cfg.Env, cfg.Log),
		mux:       chi.NewRouter(),
		log:       cfg.Log,
	}
}

// Initialize registers everything in a fixed order: user controllers, the
// serving controller, server-rendered views (outside development only), and
// the catch-all 404 last so it never preempts a real route. A failing phase
// is logged and abandoned; later phases still run, leaving the process
// serving whatever registered successfully. Call exactly once.
func (rt *Router) Initialize(ctx context.Context) {
	for _, c := range rt.cfg.Controllers {
		if err := rt.registrar.Register(ctx, rt.mux, c); err != nil {
			rt.log.Error("Controller registration failed", "controller", c.Name(), "err", err)
		}
	}

	if rt.cfg.Serving != nil {
		if err := rt.registrar.Register(ctx, rt.mux, rt.cfg.Serving); err != nil {
			rt.log.Error("Serving controller registration failed", "err", err)
		}
	}

	if !rt.cfg.Env.IsDevelopment() && len(rt.cfg.Views) > 0 {
		vc := &viewsController{views: rt.cfg.Views, template: rt.cfg.Template}
		if err := rt.registrar.Register(ctx, rt.mux, vc); err != nil {
			rt.log.Error("View registration failed", "err", err)
		}
	}

	rt.mux.NotFound(rt.notFound)
}

// Handler returns the composed router, usable as one mounted layer in a
// larger HTTP pipeline.
func (rt *Router) Handler() http.Handler {
	return rt.mux
}

func (rt *Router) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundPage))
}

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
  <head><meta charset="UTF-8" /><title>Not Found</title></head>
  <body><h1>404</h1><p>The requested page does not exist.</p></body>
</html>
`

// ListenerCloser closes the HTTP listener, refusing new connections.
type ListenerCloser interface {
	Shutdown() error
}

// ShutdownHandler returns the nullary function the application shell invokes
// on termination signals. The first invocation closes the listener, then
// (development only, and only after the listener close completes) shuts down
// the asset server, and exits through exit with code 0, or 1 if either step
// failed. Any invocation while shutdown is already in progress is a no-op
// log line.
func (rt *Router) ShutdownHandler(listener ListenerCloser, exit func(code int)) func() {
	return func() {
		if !rt.shuttingDown.CompareAndSwap(false, true) {
			rt.log.Info("Shutdown already in progress, ignoring signal")
			return
		}

		code := 0

		rt.log.Info("Closing HTTP listener")
		if err := listener.Shutdown(); err != nil {
			rt.log.Error("HTTP listener close failed", "err", err)
			code = 1
		}

		if rt.cfg.Env.IsDevelopment() && rt.cfg.Assets != nil {
			if err := rt.cfg.Assets.Shutdown(); err != nil {
				rt.log.Error("Asset server shutdown failed", "err", err)
				code = 1
			}
		}

		rt.log.Info("Shutdown complete", "code", code)
		exit(code)
	}
}
