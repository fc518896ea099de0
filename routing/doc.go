// Package routing defines the declarative route descriptor model and the
// registration algorithm that binds controllers to a chi router.
//
// A controller owns an ordered list of route descriptors. Registration applies
// environment scoping, dynamic registration guards, request validation
// injection, and endpoint error wrapping, in a single deterministic pass per
// controller. Registration is not idempotent: callers register each controller
// exactly once per process lifetime, before request traffic begins.
package routing
