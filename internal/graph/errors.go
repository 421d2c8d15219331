package graph

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TransportError means the request never produced a response: the connection
// failed, timed out or was cancelled, or the request could not be built.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graph transport error during %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means a response arrived but its body was not usable JSON.
type ParseError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("graph parse error (status %d): %v", e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError is the "error" member of a Graph response.
type APIError struct {
	StatusCode int
	Type       string
	Code       int
	Subcode    int
	Message    string
	TraceID    string
	// Raw holds the error member exactly as received.
	Raw interface{}
}

func (e *APIError) Error() string {
	if e.Type != "" || e.Code != 0 {
		return fmt.Sprintf("graph API error (status %d, type %s, code %d): %s", e.StatusCode, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("graph API error (status %d): %s", e.StatusCode, e.Message)
}

// AsAPIError reports whether err carries an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newAPIError(status int, raw interface{}) *APIError {
	e := &APIError{StatusCode: status, Raw: raw}

	fields, ok := raw.(map[string]interface{})
	if !ok {
		if s, isString := raw.(string); isString {
			e.Message = s
		} else {
			e.Message = fmt.Sprint(raw)
		}
		return e
	}

	e.Message = stringField(fields, "message")
	e.Type = stringField(fields, "type")
	e.TraceID = stringField(fields, "fbtrace_id")
	e.Code = intField(fields, "code")
	e.Subcode = intField(fields, "error_subcode")
	return e
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intField(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	}
	return 0
}
