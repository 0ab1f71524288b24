package rosette

// Response pairs a parsed JSON body with the HTTP status code of the
// attempt that produced it. One Response is built per request attempt and
// discarded once the caller has extracted its result or error.
type Response struct {
	Body       map[string]any
	StatusCode int
}
