package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/webapp-serving-backend/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	name   string
	routes []Descriptor
}

func (c *stubController) Name() string        { return c.name }
func (c *stubController) Routes() []Descriptor { return c.routes }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func textEndpoint(body string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := w.Write([]byte(body))
		return err
	}
}

func TestRegisterEnvScopeSelectsMatchingRoute(t *testing.T) {
	// Two descriptors claim the same method and path; only the one scoped to
	// the active environment may ever be bound.
	c := &stubController{
		name: "ui",
		routes: []Descriptor{
			{Method: MethodGet, Path: "/a", EnvScope: common.Production, Endpoint: textEndpoint("production")},
			{Method: MethodGet, Path: "/a", EnvScope: common.Development, Endpoint: textEndpoint("development")},
		},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "development", w.Body.String())
}

func TestRegisterUnscopedRouteBindsInAnyEnvironment(t *testing.T) {
	c := &stubController{
		name:   "api",
		routes: []Descriptor{{Method: MethodGet, Path: "/ping", Endpoint: textEndpoint("pong")}},
	}

	for _, env := range []common.Environment{common.Development, common.Production} {
		mux := chi.NewRouter()
		g := NewRegistrar(env, testLogger())
		require.NoError(t, g.Register(context.Background(), mux, c))

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code, "env %s", env)
	}
}

func TestRegisterInvalidMethodIsConfigurationError(t *testing.T) {
	c := &stubController{
		name:   "broken",
		routes: []Descriptor{{Method: Method("FETCH"), Path: "/x", Endpoint: textEndpoint("never")}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	err := g.Register(context.Background(), mux, c)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestRegisterGuardSkipsPermanently(t *testing.T) {
	enabled := false
	evaluations := 0
	c := &stubController{
		name: "gated",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/feature",
			ShouldRegister: func(ctx context.Context) (bool, error) {
				evaluations++
				return enabled, nil
			},
			Endpoint: textEndpoint("feature"),
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))
	assert.Equal(t, 1, evaluations)

	// Flipping the condition after registration changes nothing; the guard
	// ran once at startup and the route stays unreachable.
	enabled = true
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feature", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, evaluations)
}

func TestRegisterGuardErrorFailsController(t *testing.T) {
	c := &stubController{
		name: "gated",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/feature",
			ShouldRegister: func(ctx context.Context) (bool, error) {
				return false, errors.New("flag backend down")
			},
			Endpoint: textEndpoint("feature"),
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.Error(t, g.Register(context.Background(), mux, c))
}

func TestValidationShortCircuitsToErrorPath(t *testing.T) {
	endpointCalled := false
	c := &stubController{
		name: "validated",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/v",
			Validate: func(r *http.Request) error {
				if r.URL.Query().Get("token") == "" {
					return errors.New("missing token")
				}
				return nil
			},
			Endpoint: func(w http.ResponseWriter, r *http.Request) error {
				endpointCalled = true
				_, err := w.Write([]byte("ok"))
				return err
			},
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, endpointCalled, "endpoint must not run on validation failure")

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v?token=abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, endpointCalled)
}

func TestValidationRequestErrorKeepsStatus(t *testing.T) {
	c := &stubController{
		name: "validated",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/v",
			Validate: func(r *http.Request) error {
				return &RequestError{StatusCode: http.StatusUnprocessableEntity, Err: errors.New("bad payload")}
			},
			Endpoint: textEndpoint("never"),
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOnErrorObservesWithoutSuppressing(t *testing.T) {
	var observed error
	c := &stubController{
		name: "failing",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/boom",
			OnError: func(r *http.Request, err error) {
				observed = err
			},
			Endpoint: func(w http.ResponseWriter, r *http.Request) error {
				return &RequestError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("backend offline")}
			},
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	// The hook saw the error and the error still reached the response.
	require.Error(t, observed)
	assert.Contains(t, observed.Error(), "backend offline")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "backend offline")
}

func TestEndpointPanicLandsOnErrorPath(t *testing.T) {
	c := &stubController{
		name: "panicky",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/panic",
			Endpoint: func(w http.ResponseWriter, r *http.Request) error {
				panic("unexpected state")
			},
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	require.NoError(t, g.Register(context.Background(), mux, c))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProvidersResolveConcurrentlyInDeclaredOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	marker := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				next.ServeHTTP(w, r)
			})
		}
	}

	// The first provider is the slowest; with concurrent resolution the
	// chain must still run in declaration order.
	c := &stubController{
		name: "chained",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/chain",
			Handlers: []MiddlewareProvider{
				func(ctx context.Context) (Middleware, error) {
					time.Sleep(30 * time.Millisecond)
					return marker("first"), nil
				},
				Ready(marker("second")),
			},
			Endpoint: textEndpoint("done"),
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())

	start := time.Now()
	require.NoError(t, g.Register(context.Background(), mux, c))
	require.Less(t, time.Since(start), 200*time.Millisecond)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chain", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestProviderFailureFailsRegistration(t *testing.T) {
	c := &stubController{
		name: "chained",
		routes: []Descriptor{{
			Method: MethodGet,
			Path:   "/chain",
			Handlers: []MiddlewareProvider{
				func(ctx context.Context) (Middleware, error) {
					return nil, fmt.Errorf("engine unavailable")
				},
			},
			Endpoint: textEndpoint("never"),
		}},
	}

	mux := chi.NewRouter()
	g := NewRegistrar(common.Development, testLogger())
	err := g.Register(context.Background(), mux, c)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine unavailable")
}

func TestMethodValid(t *testing.T) {
	for _, m := range []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions} {
		assert.True(t, m.Valid(), string(m))
	}
	assert.False(t, Method("FETCH").Valid())
	assert.False(t, Method("").Valid())
	assert.False(t, Method("get").Valid())
}
