package routing

import (
	"errors"
	"net/http"
)

// ErrInvalidMethod marks a descriptor declaring an unrecognized HTTP verb.
// This is a configuration error: registration of the owning controller fails
// instead of silently dropping the route.
var ErrInvalidMethod = errors.New("unrecognized HTTP method")

// RequestError carries an HTTP status code alongside the underlying error so
// handlers can steer the response status on the error path.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// WriteError writes err to the response on the standard error path. A
// *RequestError chooses its own status code; anything else becomes a 500.
func WriteError(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
