package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/brizzai/graph-mcp/internal/requester"
)

var errNullBody = errors.New("response body is null")

// Result is a successfully decoded Graph response. Value is usually a
// map[string]interface{}, but some endpoints answer with a bare JSON
// literal such as true.
type Result struct {
	StatusCode int
	Raw        json.RawMessage
	Value      interface{}
}

// Map returns the result as a JSON object, or nil when it is not one.
func (r *Result) Map() map[string]interface{} {
	m, _ := r.Value.(map[string]interface{})
	return m
}

// Get returns the top-level field key, or nil.
func (r *Result) Get(key string) interface{} {
	return r.Map()[key]
}

// String returns the top-level field key when it is a string or number.
func (r *Result) String(key string) string {
	switch v := r.Get(key).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// ID is shorthand for String("id").
func (r *Result) ID() string {
	return r.String("id")
}

// Decode unmarshals the raw body into v.
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.Raw, v)
}

// parseResponse classifies a response body: unusable JSON is a *ParseError,
// an object with an "error" member is an *APIError, anything else a Result.
func parseResponse(resp *requester.Response) (*Result, error) {
	value, err := decodeJSON(resp.Body)
	if err == nil && value == nil {
		err = errNullBody
	}
	if err != nil {
		return nil, &ParseError{StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}

	if m, ok := value.(map[string]interface{}); ok {
		if apiErr, present := m["error"]; present && truthy(apiErr) {
			return nil, newAPIError(resp.StatusCode, apiErr)
		}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Raw:        json.RawMessage(resp.Body),
		Value:      value,
	}, nil
}

func decodeJSON(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return value, nil
}

// truthy mirrors how the Graph error member has always been checked: an
// empty, false or null member does not count as an error.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}
