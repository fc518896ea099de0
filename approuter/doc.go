// Package approuter composes the application's HTTP surface: user-supplied
// controllers, the UI serving controller, server-rendered views, and the
// catch-all 404, registered in that fixed order on a single chi router. It
// also owns shutdown sequencing: the HTTP listener closes before the
// development asset server is torn down.
package approuter
