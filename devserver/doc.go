// Package devserver manages the development-mode asset-transformation server
// as a process-wide singleton resource.
//
// The underlying engine (an external bundler's dev server) is opaque behind a
// narrow contract: create, transform a held HTML template for a request path,
// hand out request middleware, close. Creation is lazy and asynchronous;
// concurrent first requests coalesce onto a single in-flight creation so that
// exactly one engine ever exists. Shutdown is idempotent and always resets
// state, even when closing the engine fails.
package devserver
