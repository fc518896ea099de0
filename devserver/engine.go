package devserver

import (
	"context"

	"github.com/ruteri/webapp-serving-backend/routing"
)

// Engine is the narrow contract over the external asset-transformation
// server. Everything behind it (bundling, module resolution, the live-reload
// protocol) is opaque to this package.
type Engine interface {
	// TransformTemplate rewrites the HTML template for the given request
	// path, injecting whatever development bootstrapping the engine needs.
	TransformTemplate(ctx context.Context, urlPath, markup string) (string, error)

	// Middleware returns the engine's request middleware. It serves bundled
	// assets and the engine's own protocol endpoints, passing everything else
	// through to the next handler.
	Middleware() routing.Middleware

	// Close releases the engine. The engine is unusable afterwards.
	Close() error
}

// EngineFactory creates a live engine from a merged configuration, or fails.
type EngineFactory func(ctx context.Context, cfg EngineConfig) (Engine, error)

// EngineConfig is the configuration recognized by engine factories.
type EngineConfig struct {
	// Root is the directory holding front-end sources and the entry template.
	Root string

	// Entry is the HTML template file, relative to Root.
	Entry string

	// Standalone runs the engine with its own listener instead of the nested
	// middleware mode used when the engine is mounted inside this shell.
	Standalone bool
}

func defaultEngineConfig() EngineConfig {
	return EngineConfig{
		Root:  ".",
		Entry: "index.html",
	}
}

// merge overlays caller-supplied overrides on top of the defaults; caller
// values win ties.
func (c EngineConfig) merge(overrides EngineConfig) EngineConfig {
	if overrides.Root != "" {
		c.Root = overrides.Root
	}
	if overrides.Entry != "" {
		c.Entry = overrides.Entry
	}
	if overrides.Standalone {
		c.Standalone = true
	}
	return c
}
