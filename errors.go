package folio

import (
	"errors"
	"net/http"
)

// ValidationError reports missing or malformed input. Its message is shown
// to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RelayError wraps a failure of the contact mail relay.
type RelayError struct {
	Err error
}

func (e *RelayError) Error() string { return "relay: " + e.Err.Error() }
func (e *RelayError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the object storage client.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

const (
	msgRelayFailed   = "Failed to send message. Please try again later."
	msgStorageFailed = "Failed to upload file"
	msgGeneric       = "Something went wrong!"
)

// classify maps the typed errors handlers return to a status code and the
// message clients see. ok is false for anything else.
func classify(err error) (code int, message string, ok bool) {
	var ve *ValidationError
	var re *RelayError
	var se *StorageError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message, true
	case errors.As(err, &re):
		return http.StatusInternalServerError, msgRelayFailed, true
	case errors.As(err, &se):
		return http.StatusInternalServerError, msgStorageFailed, true
	}
	return 0, "", false
}
