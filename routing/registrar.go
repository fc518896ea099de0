package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/webapp-serving-backend/common"
	"golang.org/x/sync/errgroup"
)

// Registrar binds controllers' route descriptors to a chi router. One
// registrar serves the whole process; it carries the active runtime
// environment for descriptor scoping.
type Registrar struct {
	env common.Environment
	log *slog.Logger
}

// NewRegistrar creates a registrar for the given runtime environment.
func NewRegistrar(env common.Environment, log *slog.Logger) *Registrar {
	return &Registrar{
		env: env,
		log: log,
	}
}

// Register binds every descriptor of the controller, in declaration order.
// Skipped descriptors (guard returned false, or environment scope mismatch)
// are logged at debug level and are unreachable for the remainder of the
// process. An unrecognized HTTP verb aborts the controller's registration with
// an error; partial registration up to the offending descriptor remains.
//
// Register is not idempotent. Calling it twice double-binds routes; callers
// invoke it exactly once per controller per process, before serving traffic.
func (g *Registrar) Register(ctx context.Context, mux chi.Router, c Controller) error {
	for _, d := range c.Routes() {
		if d.ShouldRegister != nil {
			ok, err := d.ShouldRegister(ctx)
			if err != nil {
				return fmt.Errorf("registration guard for %s %s: %w", d.Method, d.Path, err)
			}
			if !ok {
				g.log.Debug("Skipping route, registration guard declined",
					"controller", c.Name(), "method", string(d.Method), "path", d.Path)
				continue
			}
		}

		if d.EnvScope != "" && d.EnvScope != g.env {
			g.log.Debug("Skipping route, outside environment scope",
				"controller", c.Name(), "method", string(d.Method), "path", d.Path,
				"scope", string(d.EnvScope), "env", string(g.env))
			continue
		}

		if !d.Method.Valid() {
			return fmt.Errorf("controller %s, route %s: %w: %q", c.Name(), d.Path, ErrInvalidMethod, string(d.Method))
		}

		chain, err := resolveProviders(ctx, d.Handlers)
		if err != nil {
			return fmt.Errorf("controller %s, route %s %s: %w", c.Name(), d.Method, d.Path, err)
		}

		if d.Validate != nil {
			chain = append([]Middleware{validationMiddleware(d.Validate)}, chain...)
		}

		r := mux.With(toChiMiddlewares(chain)...)
		r.Method(string(d.Method), d.Path, g.endpoint(d))

		g.log.Debug("Registered route",
			"controller", c.Name(), "method", string(d.Method), "path", d.Path)
	}
	return nil
}

// resolveProviders resolves all pending middleware concurrently while keeping
// declaration order in the returned slice. Any provider failure fails the
// whole descriptor.
func resolveProviders(ctx context.Context, providers []MiddlewareProvider) ([]Middleware, error) {
	chain := make([]Middleware, len(providers))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, provide := range providers {
		i, provide := i, provide
		eg.Go(func() error {
			mw, err := provide(egCtx)
			if err != nil {
				return fmt.Errorf("resolving middleware %d: %w", i, err)
			}
			chain[i] = mw
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return chain, nil
}

// validationMiddleware runs the descriptor's validator before the rest of the
// chain. A validation failure is written to the error path with status 400
// unless the validator already chose a status via RequestError; the endpoint
// is never invoked.
func validationMiddleware(validate ValidateFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validate(r); err != nil {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					err = &RequestError{StatusCode: http.StatusBadRequest, Err: err}
				}
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// endpoint wraps the descriptor's handler so every failure mode lands on the
// standard error path: returned errors and panics are caught, handed to the
// OnError hook for side effects, and then written to the response. The hook
// never suppresses propagation.
func (g *Registrar) endpoint(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("handler panic: %v", rec)
				}
			}()
			err = d.Endpoint(w, r)
		}()
		if err == nil {
			return
		}

		g.log.Error("Request handler failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
		if d.OnError != nil {
			d.OnError(r, err)
		}
		WriteError(w, err)
	}
}

func toChiMiddlewares(chain []Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, len(chain))
	for i, mw := range chain {
		out[i] = mw
	}
	return out
}
