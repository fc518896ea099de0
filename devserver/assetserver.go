package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ruteri/webapp-serving-backend/routing"
	"golang.org/x/sync/singleflight"
)

// ErrClosedDuringInit is returned to creation waiters when Shutdown runs
// while the engine is still being created. The created engine is discarded;
// the next request starts a fresh creation attempt.
var ErrClosedDuringInit = errors.New("asset server shut down during engine creation")

// AssetServer owns the at-most-one live engine instance for the process.
//
// States: uninitialized (no engine, no in-flight creation), initializing
// (exactly one creation in flight, shared by all concurrent callers), ready
// (engine set, Instance returns it without blocking). Creation failure resets
// to uninitialized and surfaces the same error to every waiter of that
// attempt; there is no permanent poisoning. Shutdown from any state resets to
// uninitialized.
type AssetServer struct {
	factory EngineFactory
	config  EngineConfig
	log     *slog.Logger

	mu     sync.Mutex
	engine Engine
	gen    uint64
	flight singleflight.Group
}

// New creates an asset server. The engine is not created until the first
// Instance, TransformTemplate, or Middleware call. Overrides are merged over
// the engine configuration defaults, caller values winning ties.
func New(factory EngineFactory, overrides EngineConfig, log *slog.Logger) *AssetServer {
	return &AssetServer{
		factory: factory,
		config:  defaultEngineConfig().merge(overrides),
		log:     log,
	}
}

// Instance returns the live engine, creating it on first use. Concurrent
// callers during creation share the single in-flight attempt: exactly one
// factory call happens and every caller observes the same engine or the same
// error. Once ready the engine is returned without blocking.
func (s *AssetServer) Instance(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	if s.engine != nil {
		eng := s.engine
		s.mu.Unlock()
		return eng, nil
	}
	gen := s.gen
	s.mu.Unlock()

	v, err, _ := s.flight.Do("engine", func() (interface{}, error) {
		s.log.Info("Creating asset-transformation engine",
			"root", s.config.Root, "standalone", s.config.Standalone)

		// The engine outlives the request that triggered its creation.
		eng, err := s.factory(context.WithoutCancel(ctx), s.config)
		if err != nil {
			return nil, fmt.Errorf("creating asset engine: %w", err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			if cerr := eng.Close(); cerr != nil {
				s.log.Error("Closing orphaned asset engine failed", "err", cerr)
			}
			return nil, ErrClosedDuringInit
		}
		s.engine = eng
		return eng, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Engine), nil
}

// TransformTemplate reads the entry HTML template from disk and asks the
// engine to rewrite it for the given request path, creating the engine first
// if needed. The template is re-read on every call so source edits are picked
// up without restarting the shell.
func (s *AssetServer) TransformTemplate(ctx context.Context, urlPath string) (string, error) {
	eng, err := s.Instance(ctx)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(filepath.Join(s.config.Root, s.config.Entry))
	if err != nil {
		return "", fmt.Errorf("reading entry template: %w", err)
	}

	markup, err := eng.TransformTemplate(ctx, urlPath, string(raw))
	if err != nil {
		return "", fmt.Errorf("transforming template for %s: %w", urlPath, err)
	}
	return markup, nil
}

// Middleware returns the engine's request middleware, creating the engine
// first if needed.
func (s *AssetServer) Middleware(ctx context.Context) (routing.Middleware, error) {
	eng, err := s.Instance(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Middleware(), nil
}

// MiddlewareProvider adapts Middleware for use in a route descriptor's
// handler chain, deferring engine creation to registration time.
func (s *AssetServer) MiddlewareProvider() routing.MiddlewareProvider {
	return func(ctx context.Context) (routing.Middleware, error) {
		return s.Middleware(ctx)
	}
}

// Shutdown closes the live engine, if any, and resets to the uninitialized
// state. It is idempotent: with no live engine it returns immediately. The
// instance and pending-creation references are cleared unconditionally, so a
// failing Close never blocks process teardown; the close error is returned
// only so callers can reflect it in the process exit code.
func (s *AssetServer) Shutdown() error {
	s.mu.Lock()
	eng := s.engine
	s.engine = nil
	s.gen++
	s.mu.Unlock()
	s.flight.Forget("engine")

	if eng == nil {
		return nil
	}

	s.log.Info("Shutting down asset-transformation engine")
	if err := eng.Close(); err != nil {
		s.log.Error("Asset engine close failed", "err", err)
		return err
	}
	return nil
}
