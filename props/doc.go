// Package props implements a generic property store: a key/value container
// with optional per-key validators and lifecycle hooks, used as a
// business-logic backing for controllers. The store does no locking; callers
// serialize mutation.
package props
