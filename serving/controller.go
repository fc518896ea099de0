package serving

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ruteri/webapp-serving-backend/common"
	"github.com/ruteri/webapp-serving-backend/devserver"
	"github.com/ruteri/webapp-serving-backend/routing"
)

// Config holds the production asset locations.
type Config struct {
	// StaticDir is the directory of prebuilt client assets.
	StaticDir string

	// EntryFile is the HTML document served for any path with no matching
	// static asset (the SPA fallback), relative to StaticDir.
	EntryFile string
}

// Controller produces the two environment-scoped catch-all routes for the UI.
// It owns the development asset server handle; the production route never
// touches it.
type Controller struct {
	cfg    Config
	assets *devserver.AssetServer
	log    *slog.Logger
}

// NewController creates the serving controller. EntryFile defaults to
// index.html when unset.
func NewController(cfg Config, assets *devserver.AssetServer, log *slog.Logger) *Controller {
	if cfg.EntryFile == "" {
		cfg.EntryFile = "index.html"
	}
	return &Controller{
		cfg:    cfg,
		assets: assets,
		log:    log,
	}
}

// Name implements routing.Controller.
func (c *Controller) Name() string { return "serving" }

// Routes returns the production and development descriptors. Both claim
// GET /*; their environment scopes are mutually exclusive, so the registrar
// binds at most one per process.
func (c *Controller) Routes() []routing.Descriptor {
	return []routing.Descriptor{
		{
			Method:   routing.MethodGet,
			Path:     "/*",
			EnvScope: common.Production,
			Handlers: []routing.MiddlewareProvider{
				routing.Ready(c.staticMiddleware()),
			},
			Endpoint: c.serveEntry,
			OnError: func(r *http.Request, err error) {
				c.log.Error("Static serving failed", "path", r.URL.Path, "err", err)
			},
		},
		{
			Method:   routing.MethodGet,
			Path:     "/*",
			EnvScope: common.Development,
			Handlers: []routing.MiddlewareProvider{
				routing.Ready(c.requestLogMiddleware()),
				c.assets.MiddlewareProvider(),
			},
			Endpoint: c.serveTransformed,
		},
	}
}

// staticMiddleware serves files that exist under StaticDir and falls through
// to the SPA fallback endpoint for everything else.
func (c *Controller) staticMiddleware() routing.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := filepath.Join(c.cfg.StaticDir, filepath.Clean("/"+r.URL.Path))
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				http.ServeFile(w, r, name)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// serveEntry is the production SPA fallback: every unmatched path gets the
// entry document so client-side routing can take over.
func (c *Controller) serveEntry(w http.ResponseWriter, r *http.Request) error {
	name := filepath.Join(c.cfg.StaticDir, c.cfg.EntryFile)
	markup, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading SPA entry file: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(markup)
	return err
}

func (c *Controller) requestLogMiddleware() routing.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.log.Debug("Dev request", "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

// serveTransformed asks the asset server to rewrite the entry template for
// the original request path and responds with the result.
func (c *Controller) serveTransformed(w http.ResponseWriter, r *http.Request) error {
	markup, err := c.assets.TransformTemplate(r.Context(), requestPath(r))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write([]byte(markup))
	return err
}

func requestPath(r *http.Request) string {
	if p := r.URL.Path; p != "" {
		return p
	}
	return "/"
}
