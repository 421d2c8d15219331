package constants

const (
	// SessionPath serves the identity of the caller's session cookie
	SessionPath = "/session"

	// MetricsPath serves Prometheus metrics
	MetricsPath = "/metrics"

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"

	// MCPSessionHeader is the session header used by the MCP transports
	MCPSessionHeader = "Mcp-Session-Id"
)

// CORS defaults for the SSE/HTTP transports
var (
	AllowedMethods = []string{"GET", "POST", "OPTIONS", "DELETE"}
	AllowedHeaders = []string{"Content-Type", "Cookie", MCPSessionHeader, RequestIDHeader}
	ExposedHeaders = []string{MCPSessionHeader, RequestIDHeader}
)
