package common

// Environment is the process-wide runtime mode. It is read once at startup and
// threaded through component constructors; components never re-read it from the
// process environment.
type Environment string

const (
	// Development serves the UI through the asset-transformation dev server.
	Development Environment = "development"

	// Production serves prebuilt static assets with an SPA fallback.
	Production Environment = "production"
)

// EnvironmentFromString parses a runtime environment value. Anything other
// than "production" (the empty string included) maps to Development.
func EnvironmentFromString(s string) Environment {
	if s == string(Production) {
		return Production
	}
	return Development
}

// IsDevelopment reports whether the environment is the development mode.
func (e Environment) IsDevelopment() bool {
	return e == Development
}
