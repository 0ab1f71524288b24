package rosette

import "fmt"

// Symbolic status codes carried by APIError for failures detected locally,
// before or instead of a numeric HTTP status from the server.
const (
	// StatusBadKey indicates an unrecognized parameter key was set or read.
	StatusBadKey = "badKey"
	// StatusMissingParameter indicates a required parameter was not supplied.
	StatusMissingParameter = "missingParameter"
	// StatusBadArgument indicates a cross-field parameter constraint was violated.
	StatusBadArgument = "badArgument"
	// StatusIncompatible indicates the supplied input type does not fit the endpoint.
	StatusIncompatible = "incompatible"
	// StatusConnectionError indicates the server could not be reached.
	StatusConnectionError = "connectionError"
	// StatusUnknownVariable indicates a value outside an enumerated set.
	StatusUnknownVariable = "unknownVariable"
	// StatusUnknownError is the fallback code when the server supplies none.
	StatusUnknownError = "unknownError"
)

// APIError is the single error type used for all local and remote failures.
// Status is either one of the symbolic codes above or the decimal HTTP
// status returned by the server. Detail carries the raw context value: the
// offending key, the request URL, or the raw server message.
type APIError struct {
	Status  string
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Status + ": " + e.Message + ":\n  " + e.Detail
}

// Is implements errors.Is support for APIError. Two APIErrors match when
// their Status codes are equal, or when the target carries no Status at all.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Status == "" || t.Status == e.Status
}

// NewAPIError creates an APIError with the given status code, message and
// raw detail value.
func NewAPIError(status, message, detail string) *APIError {
	return &APIError{Status: status, Message: message, Detail: detail}
}

func newBadKeyError(key string) *APIError {
	return NewAPIError(StatusBadKey, "unknown Rosette parameter key", fmt.Sprintf("%q", key))
}

func newConnectionError(url string) *APIError {
	return NewAPIError(StatusConnectionError, "unable to establish connection to the Rosette API server", url)
}
