package props

import (
	"fmt"
)

// Validator checks a candidate value for one key before it is stored.
type Validator func(value any) error

// Hooks observes store mutations. Implementations are supplied by the owner;
// NopHooks is the default. Hooks run after the mutation they describe.
type Hooks interface {
	OnSet(key string, value any)
	OnRemove(key string)
	OnReset()
}

// NopHooks is the default no-op Hooks implementation.
type NopHooks struct{}

func (NopHooks) OnSet(string, any) {}
func (NopHooks) OnRemove(string)   {}
func (NopHooks) OnReset()          {}

// ValidationError reports a value rejected by a key's validator. The store is
// left unchanged.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %q: %s", e.Key, e.Err.Error())
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Store is the property container.
type Store struct {
	values     map[string]any
	validators map[string]Validator
	hooks      Hooks
}

// NewStore creates a store with the given lifecycle hooks; nil hooks default
// to NopHooks.
func NewStore(hooks Hooks) *Store {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Store{
		values:     make(map[string]any),
		validators: make(map[string]Validator),
		hooks:      hooks,
	}
}

// RegisterValidator installs a validator for key. Subsequent Set calls for
// the key must pass it.
func (s *Store) RegisterValidator(key string, v Validator) {
	s.validators[key] = v
}

// Set stores value under key. If the key has a validator and it rejects the
// value, the store is left untouched, the OnSet hook does not run, and a
// *ValidationError is returned.
func (s *Store) Set(key string, value any) error {
	if validate, ok := s.validators[key]; ok {
		if err := validate(value); err != nil {
			return &ValidationError{Key: key, Err: err}
		}
	}
	s.values[key] = value
	s.hooks.OnSet(key, value)
	return nil
}

// Get returns the value for key and whether it is present. Absent keys are an
// ordinary result, never a failure.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Remove deletes key and invokes the OnRemove hook. Removing an absent key is
// a no-op for the values, but the hook still runs.
func (s *Store) Remove(key string) {
	delete(s.values, key)
	s.hooks.OnRemove(key)
}

// Reset replaces the entire property set with defaults and invokes the
// OnReset hook. Validators are kept; defaults bypass them.
func (s *Store) Reset(defaults map[string]any) {
	s.values = make(map[string]any, len(defaults))
	for k, v := range defaults {
		s.values[k] = v
	}
	s.hooks.OnReset()
}

// Snapshot returns a read-only copy of the current properties.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
