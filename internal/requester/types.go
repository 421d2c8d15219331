package requester

import (
	"net/http"
	"net/url"
)

// Request describes a single Graph API call before it is turned into an
// *http.Request. A non-nil Form forces the method to POST.
type Request struct {
	Path   string
	Method string
	Query  url.Values
	Form   url.Values

	// AccessToken is injected into Form (when present) or Query by the AuthManager.
	AccessToken string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}
