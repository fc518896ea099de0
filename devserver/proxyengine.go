package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ruteri/webapp-serving-backend/routing"
)

// devClientPath is the bundler's live-reload client entry, injected into
// every transformed template.
const devClientPath = "/@dev/client"

// ProxyEngine implements Engine against a bundler dev process running out of
// band. Asset requests are reverse-proxied to the bundler; template
// transformation injects the bundler's client script so the browser talks to
// it directly for module loading and live reload.
type ProxyEngine struct {
	target *url.URL
	proxy  *httputil.ReverseProxy
	log    *slog.Logger
}

// NewProxyEngineFactory returns an EngineFactory connecting to the bundler
// dev process at bundlerAddr (host:port). Creation probes the address and
// fails if the bundler is not reachable, which lets callers retry once the
// process is up.
func NewProxyEngineFactory(bundlerAddr string, log *slog.Logger) EngineFactory {
	return func(ctx context.Context, cfg EngineConfig) (Engine, error) {
		dialer := net.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", bundlerAddr)
		if err != nil {
			return nil, fmt.Errorf("bundler dev process unreachable at %s: %w", bundlerAddr, err)
		}
		conn.Close()

		target := &url.URL{Scheme: "http", Host: bundlerAddr}
		return &ProxyEngine{
			target: target,
			proxy:  httputil.NewSingleHostReverseProxy(target),
			log:    log,
		}, nil
	}
}

// TransformTemplate injects the bundler's dev client script into the template
// head. The request path is logged only; the proxy engine serves the same
// bootstrapping for every path.
func (e *ProxyEngine) TransformTemplate(ctx context.Context, urlPath, markup string) (string, error) {
	e.log.Debug("Transforming template", "path", urlPath)

	tag := fmt.Sprintf("<script type=\"module\" src=\"%s\"></script>", devClientPath)
	if idx := strings.Index(markup, "</head>"); idx >= 0 {
		return markup[:idx] + tag + "\n" + markup[idx:], nil
	}
	return tag + "\n" + markup, nil
}

// Middleware forwards bundler-owned requests (anything with a file extension,
// plus the engine's /@-prefixed protocol endpoints) to the dev process and
// passes the rest through.
func (e *ProxyEngine) Middleware() routing.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if e.ownsPath(r.URL.Path) {
				e.proxy.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (e *ProxyEngine) ownsPath(p string) bool {
	if strings.HasPrefix(p, "/@") {
		return true
	}
	ext := path.Ext(p)
	return ext != "" && ext != ".html"
}

// Close releases the engine handle. The bundler process itself is not owned
// by this shell and keeps running.
func (e *ProxyEngine) Close() error {
	e.log.Debug("Releasing bundler proxy engine", "target", e.target.String())
	return nil
}
