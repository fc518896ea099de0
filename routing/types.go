package routing

import (
	"context"
	"net/http"

	"github.com/ruteri/webapp-serving-backend/common"
)

// Method is the closed set of HTTP verbs a descriptor may declare. Using a
// dedicated type keeps unknown verbs out of route tables; Valid is the runtime
// exhaustiveness check applied during registration.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// Valid reports whether the method is one of the recognized HTTP verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions:
		return true
	default:
		return false
	}
}

// Middleware wraps an http.Handler, chi-style.
type Middleware func(http.Handler) http.Handler

// MiddlewareProvider produces a middleware at registration time. Providers let
// a descriptor declare middleware whose construction is itself asynchronous
// (for example middleware backed by a lazily created dev asset server). All of
// a descriptor's providers are resolved concurrently, exactly once, before the
// route is bound; declaration order is preserved in the resulting chain.
type MiddlewareProvider func(ctx context.Context) (Middleware, error)

// Ready wraps an already-constructed middleware as a provider.
func Ready(mw Middleware) MiddlewareProvider {
	return func(context.Context) (Middleware, error) {
		return mw, nil
	}
}

// HandlerFunc is an error-returning endpoint. A non-nil error is passed to the
// descriptor's OnError hook (if any) and then written to the response through
// the standard error path; returning an error never crashes the process.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ValidateFunc inspects a request before any handler runs. A non-nil error
// short-circuits the chain to the error path without invoking the endpoint.
type ValidateFunc func(r *http.Request) error

// ErrorHook observes an endpoint error for side effects (telemetry, logging).
// The error always continues to the standard error path afterwards; a hook
// cannot suppress propagation.
type ErrorHook func(r *http.Request, err error)

// RegisterGuard decides at registration time whether a descriptor is bound at
// all. It is evaluated exactly once; a false result skips the route for the
// remainder of the process lifetime.
type RegisterGuard func(ctx context.Context) (bool, error)

// Descriptor declares a single route.
type Descriptor struct {
	// Method is the HTTP verb. Must satisfy Method.Valid; anything else is a
	// configuration error that aborts the owning controller's registration.
	Method Method

	// Path is a chi route pattern, exact ("/healthz") or wildcard ("/*").
	Path string

	// Handlers is the ordered middleware chain, resolved once at registration.
	Handlers []MiddlewareProvider

	// Endpoint terminates the chain.
	Endpoint HandlerFunc

	// Validate, when set, runs before the handler chain.
	Validate ValidateFunc

	// OnError, when set, observes endpoint errors before propagation.
	OnError ErrorHook

	// ShouldRegister, when set, gates registration of this descriptor.
	ShouldRegister RegisterGuard

	// EnvScope restricts registration to one runtime environment. The zero
	// value registers in all environments.
	EnvScope common.Environment
}

// Controller owns an ordered list of route descriptors. Descriptor lists are
// exclusive to their controller; descriptors are never shared.
type Controller interface {
	// Name identifies the controller in logs.
	Name() string

	// Routes returns the controller's descriptors in declaration order.
	Routes() []Descriptor
}
