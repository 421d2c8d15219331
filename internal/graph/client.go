package graph

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/requester"
)

// DefaultProfile is the profile wall posts go to when none is given.
const DefaultProfile = "me"

// Edge names used by the convenience writers.
const (
	EdgeFeed     = "feed"
	EdgeLikes    = "likes"
	EdgeComments = "comments"
)

// Params are query or form arguments of a Graph call.
type Params map[string]string

func (p Params) values() url.Values {
	v := make(url.Values, len(p))
	for key, value := range p {
		v.Set(key, value)
	}
	return v
}

// Executor performs a single request round trip. *requester.HTTPRequester
// is the production implementation.
type Executor interface {
	Execute(ctx context.Context, req *requester.Request) (*requester.Response, error)
}

// Client talks to the Graph API, optionally on behalf of an access token.
// A Client is safe for concurrent use.
type Client struct {
	accessToken string
	executor    Executor
}

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	headers    map[string]string
}

// Option configures New.
type Option func(*options)

// WithBaseURL points the client at another Graph host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient sends requests through hc instead of a fresh client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) { o.headers = headers }
}

// New returns a client for the given access token, which may be empty.
func New(accessToken string, opts ...Option) (*Client, error) {
	o := options{baseURL: config.DefaultBaseURL, timeout: config.DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &config.GraphConfig{
		BaseURL:     o.baseURL,
		AccessToken: accessToken,
		Timeout:     o.timeout.String(),
		Headers:     o.headers,
	}
	builder, err := requester.NewHTTPRequestBuilder(requester.HTTPRequestBuilderParams{
		GraphConfig: cfg,
		AuthManager: requester.NewAccessTokenAuth(),
	})
	if err != nil {
		return nil, err
	}
	r, err := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		GraphConfig: cfg,
		Builder:     builder,
		HTTPClient:  o.httpClient,
	})
	if err != nil {
		return nil, err
	}
	return NewWithExecutor(accessToken, r), nil
}

// NewWithExecutor returns a client that sends its requests through exec.
func NewWithExecutor(accessToken string, exec Executor) *Client {
	return &Client{accessToken: accessToken, executor: exec}
}

// NewFromConfig builds the client from graph.* settings.
func NewFromConfig(cfg *config.GraphConfig, r *requester.HTTPRequester) *Client {
	return NewWithExecutor(cfg.AccessToken, r)
}

// WithAccessToken returns a context whose calls are made with token instead
// of the client's own, e.g. on behalf of a user whose session was validated.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return requester.WithAccessToken(ctx, token)
}

// AccessToken returns the token the client was created with.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// GetObject fetches the object with the given id.
func (c *Client) GetObject(ctx context.Context, id string, args Params) (*Result, error) {
	return c.Request(ctx, "/"+id, http.MethodGet, args, nil)
}

// GetObjects fetches several objects in one call. The ids are sent
// comma-joined as the "ids" argument; args is not modified.
func (c *Client) GetObjects(ctx context.Context, ids []string, args Params) (*Result, error) {
	query := make(Params, len(args)+1)
	for k, v := range args {
		query[k] = v
	}
	query["ids"] = strings.Join(ids, ",")
	return c.Request(ctx, "/", http.MethodGet, query, nil)
}

// GetConnections fetches the objects connected to id through the named edge.
func (c *Client) GetConnections(ctx context.Context, id, name string, args Params) (*Result, error) {
	return c.Request(ctx, "/"+id+"/"+name, http.MethodGet, args, nil)
}

// PutObject writes data to the named edge of parentID. The call is always a
// POST; nil data sends no body.
func (c *Client) PutObject(ctx context.Context, parentID, name string, data Params) (*Result, error) {
	return c.Request(ctx, parentID+"/"+name, http.MethodPost, nil, data)
}

// PutWallPost posts message to the feed of profileID ("me" when empty).
// Attachment fields such as link or name are sent alongside the message.
func (c *Client) PutWallPost(ctx context.Context, message string, attachment Params, profileID string) (*Result, error) {
	if profileID == "" {
		profileID = DefaultProfile
	}
	data := make(Params, len(attachment)+1)
	for k, v := range attachment {
		data[k] = v
	}
	data["message"] = message
	return c.PutObject(ctx, profileID, EdgeFeed, data)
}

// PutLike likes the given object.
func (c *Client) PutLike(ctx context.Context, objectID string) (*Result, error) {
	return c.PutObject(ctx, objectID, EdgeLikes, nil)
}

// PutComment comments message on the given object.
func (c *Client) PutComment(ctx context.Context, objectID, message string) (*Result, error) {
	return c.PutObject(ctx, objectID, EdgeComments, Params{"message": message})
}

// DeleteObject deletes the object with the given id.
func (c *Client) DeleteObject(ctx context.Context, id string) (*Result, error) {
	return c.Request(ctx, "/"+id, http.MethodDelete, nil, nil)
}

// Request is the executor every other method funnels into. A non-nil form
// is sent as the request body and turns the call into a POST.
func (c *Client) Request(ctx context.Context, path, method string, args, form Params) (*Result, error) {
	req := &requester.Request{
		Path:        path,
		Method:      method,
		Query:       args.values(),
		AccessToken: c.accessToken,
	}
	if form != nil {
		req.Form = form.values()
	}

	resp, err := c.executor.Execute(ctx, req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: path, Err: err}
	}
	return parseResponse(resp)
}
