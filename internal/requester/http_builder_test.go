package requester_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthManager struct {
	applyAuthFunc func(context.Context, *requester.Request) error
}

func (m *mockAuthManager) ApplyAuth(ctx context.Context, req *requester.Request) error {
	return m.applyAuthFunc(ctx, req)
}

func newBuilder(t *testing.T, baseURL string, auth requester.AuthManager) *requester.HTTPRequestBuilder {
	t.Helper()
	b, err := requester.NewHTTPRequestBuilder(requester.HTTPRequestBuilderParams{
		GraphConfig: &config.GraphConfig{BaseURL: baseURL},
		AuthManager: auth,
	})
	require.NoError(t, err)
	return b
}

func readBody(t *testing.T, req *http.Request) string {
	t.Helper()
	if req.Body == nil {
		return ""
	}
	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHTTPRequestBuilder_BuildRequest(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		req          *requester.Request
		checkRequest func(t *testing.T, req *http.Request)
	}{
		{
			name:    "Default method is GET",
			baseURL: "https://graph.example.com",
			req:     &requester.Request{Path: "/me"},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "https://graph.example.com/me", req.URL.String())
				assert.Equal(t, "application/json", req.Header.Get("Accept"))
				assert.Empty(t, readBody(t, req))
			},
		},
		{
			name:    "Missing leading slash is added",
			baseURL: "https://graph.example.com",
			req:     &requester.Request{Path: "me/feed", Method: http.MethodGet},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "/me/feed", req.URL.Path)
			},
		},
		{
			name:    "Repeated leading slashes collapse to one",
			baseURL: "https://graph.example.com/v2.0",
			req:     &requester.Request{Path: "//me///feed"},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "/v2.0/me///feed", req.URL.Path)
				assert.Equal(t, "https://graph.example.com/v2.0/me///feed", req.URL.String())
			},
		},
		{
			name:    "Root path stays root",
			baseURL: "https://graph.example.com",
			req: &requester.Request{
				Path:  "/",
				Query: url.Values{"ids": {"1,2"}},
			},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "/", req.URL.Path)
				assert.Equal(t, "1,2", req.URL.Query().Get("ids"))
			},
		},
		{
			name:    "Base URL path prefix is kept",
			baseURL: "https://graph.example.com/v2.0/",
			req:     &requester.Request{Path: "/me"},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "/v2.0/me", req.URL.Path)
			},
		},
		{
			name:    "Form forces POST whatever the method",
			baseURL: "https://graph.example.com",
			req: &requester.Request{
				Path:   "/me/feed",
				Method: http.MethodDelete,
				Form:   url.Values{"message": {"hello world"}},
			},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, http.MethodPost, req.Method)
				assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
				assert.Equal(t, "message=hello+world", readBody(t, req))
			},
		},
		{
			name:    "Empty form still forces POST",
			baseURL: "https://graph.example.com",
			req:     &requester.Request{Path: "/1/likes", Form: url.Values{}},
			checkRequest: func(t *testing.T, req *http.Request) {
				assert.Equal(t, http.MethodPost, req.Method)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, tt.baseURL, nil)
			req, err := b.BuildRequest(context.Background(), tt.req)
			require.NoError(t, err)
			tt.checkRequest(t, req)
		})
	}
}

func TestHTTPRequestBuilder_ConfigHeaders(t *testing.T) {
	b, err := requester.NewHTTPRequestBuilder(requester.HTTPRequestBuilderParams{
		GraphConfig: &config.GraphConfig{
			BaseURL: "https://graph.example.com",
			Headers: map[string]string{"X-Test-Header": "test-value", "Accept": "text/html"},
		},
	})
	require.NoError(t, err)

	req, err := b.BuildRequest(context.Background(), &requester.Request{Path: "/me"})
	require.NoError(t, err)
	assert.Equal(t, "test-value", req.Header.Get("X-Test-Header"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestHTTPRequestBuilder_QueryRoundTrip(t *testing.T) {
	queries := []url.Values{
		{},
		{"fields": {"id,name"}},
		{"q": {"a&b=c d"}, "limit": {"25"}, "unicode": {"héllo/wörld?"}},
		{"empty": {""}, "plus": {"1+1"}},
	}

	b := newBuilder(t, "https://graph.example.com", nil)
	for _, q := range queries {
		req, err := b.BuildRequest(context.Background(), &requester.Request{Path: "/search", Query: cloneValues(q)})
		require.NoError(t, err)

		decoded, err := url.ParseQuery(req.URL.RawQuery)
		require.NoError(t, err)
		assert.Equal(t, q, decoded)
	}
}

func TestHTTPRequestBuilder_AuthError(t *testing.T) {
	b := newBuilder(t, "https://graph.example.com", &mockAuthManager{
		applyAuthFunc: func(context.Context, *requester.Request) error {
			return errors.New("no credentials")
		},
	})

	_, err := b.BuildRequest(context.Background(), &requester.Request{Path: "/me"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}

func TestNewHTTPRequestBuilder_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"graph.example.com", "://bad"} {
		_, err := requester.NewHTTPRequestBuilder(requester.HTTPRequestBuilderParams{
			GraphConfig: &config.GraphConfig{BaseURL: raw},
		})
		assert.Error(t, err, raw)
	}
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
