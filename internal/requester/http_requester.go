package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/graph-mcp/internal/config"

	"github.com/brizzai/graph-mcp/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester handles both request building and execution
type HTTPRequester struct {
	client  *http.Client
	builder *HTTPRequestBuilder
	metrics *Metrics
}

type HTTPRequesterParams struct {
	fx.In

	GraphConfig *config.GraphConfig
	Builder     *HTTPRequestBuilder
	Metrics     *Metrics     `optional:"true"`
	HTTPClient  *http.Client `optional:"true"`
}

// NewHTTPRequester creates a new HTTPRequester. The client timeout comes from
// graph.timeout unless a preconfigured HTTPClient is supplied.
func NewHTTPRequester(params HTTPRequesterParams) (*HTTPRequester, error) {
	client := params.HTTPClient
	if client == nil {
		timeout, err := params.GraphConfig.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		client = &http.Client{Timeout: timeout}
	}

	builder := params.Builder
	if builder == nil {
		var err error
		builder, err = NewHTTPRequestBuilder(HTTPRequestBuilderParams{GraphConfig: params.GraphConfig})
		if err != nil {
			return nil, err
		}
	}

	return &HTTPRequester{
		client:  client,
		builder: builder,
		metrics: params.Metrics,
	}, nil
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// BaseURL returns the Graph host this requester talks to.
func (r *HTTPRequester) BaseURL() string {
	return r.builder.BaseURL()
}

// Execute builds req and performs exactly one HTTP round trip. Any returned
// error means no usable response was received; HTTP error statuses are not
// errors at this layer.
func (r *HTTPRequester) Execute(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := r.builder.BuildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.do(httpReq)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	r.metrics.observe(req.Method, status, err, elapsed)

	if err != nil {
		logger.Debug("graph request failed",
			zap.String("method", req.Method),
			zap.String("path", httpReq.URL.Path),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Debug("graph request",
		zap.String("method", req.Method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	)
	return resp, nil
}

// do performs the actual HTTP request execution
func (r *HTTPRequester) do(httpReq *http.Request) (*Response, error) {
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}
