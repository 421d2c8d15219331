package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/graph-mcp/internal/config"

	"go.uber.org/fx"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	acceptJSON      = "application/json"
)

// HTTPRequestBuilderParams holds the parameters for creating an HTTPRequestBuilder
type HTTPRequestBuilderParams struct {
	fx.In
	GraphConfig *config.GraphConfig
	AuthManager AuthManager
}

// HTTPRequestBuilder turns Request descriptors into *http.Request values
// addressed at the configured Graph host.
type HTTPRequestBuilder struct {
	baseURL *url.URL
	headers map[string]string
	authMgr AuthManager
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(params HTTPRequestBuilderParams) (*HTTPRequestBuilder, error) {
	raw := params.GraphConfig.BaseURL
	if raw == "" {
		raw = config.DefaultBaseURL
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}

	authMgr := params.AuthManager
	if authMgr == nil {
		authMgr = NewAccessTokenAuth()
	}

	return &HTTPRequestBuilder{
		baseURL: baseURL,
		headers: params.GraphConfig.Headers,
		authMgr: authMgr,
	}, nil
}

// BaseURL returns the host requests are addressed to.
func (b *HTTPRequestBuilder) BaseURL() string {
	return b.baseURL.String()
}

// BuildRequest builds an HTTP request from the descriptor. The descriptor is
// normalized in place: default method, token injection and the POST override
// for form bodies are all visible on req afterwards.
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Query == nil {
		req.Query = url.Values{}
	}

	if err := b.authMgr.ApplyAuth(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	var body io.Reader
	if req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
		req.Method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, b.buildURL(req), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range b.headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Accept", acceptJSON)
	if req.Form != nil {
		httpReq.Header.Set("Content-Type", contentTypeForm)
	}

	return httpReq, nil
}

func (b *HTTPRequestBuilder) buildURL(req *Request) string {
	u := *b.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + normalizePath(req.Path)
	u.RawPath = ""
	u.RawQuery = req.Query.Encode()
	return u.String()
}

// normalizePath makes sure the path has exactly one leading slash.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return "/" + strings.TrimLeft(path, "/")
}
