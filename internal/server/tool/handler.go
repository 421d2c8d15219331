// Package tool provides tool handling functionality for the MCP server.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brizzai/graph-mcp/internal/auth/middleware"
	"github.com/brizzai/graph-mcp/internal/graph"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Func runs one Graph call for the given tool arguments.
type Func func(ctx context.Context, client *graph.Client, args map[string]interface{}) (*graph.Result, error)

// ArgumentError reports a missing or mistyped tool argument.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q %s", e.Name, e.Reason)
}

// Handler manages tool execution and authentication.
type Handler struct {
	client       *graph.Client
	authRequired bool
}

// NewHandler creates a new tool handler.
func NewHandler(client *graph.Client, authRequired bool) *Handler {
	return &Handler{client: client, authRequired: authRequired}
}

// CreateHandler creates a handler function for a specific tool.
// The caller's session token, when present in ctx, replaces the client's own.
func (h *Handler) CreateHandler(tool *mcp.Tool, call Func) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		authInfo, ok := middleware.FromContext(ctx)
		switch {
		case ok:
			logger.Debug("Authenticated tool call",
				zap.String("tool", tool.Name),
				zap.String("user", authInfo.UserID),
			)
			ctx = graph.WithAccessToken(ctx, authInfo.Token)
		case h.authRequired:
			logger.Error("Failed to get auth info from context", zap.String("tool", tool.Name))
			return mcp.NewToolResultError("Unauthorized: No active user info in context"), nil
		}

		res, err := call(ctx, h.client, request.GetArguments())
		if err != nil {
			return errorResult(tool.Name, err), nil
		}
		return mcp.NewToolResultText(string(res.Raw)), nil
	}
}

func errorResult(tool string, err error) *mcp.CallToolResult {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return mcp.NewToolResultError("Invalid arguments: " + argErr.Error())
	}

	if apiErr, ok := graph.AsAPIError(err); ok {
		logger.Debug("Graph API error",
			zap.String("tool", tool),
			zap.Int("status", apiErr.StatusCode),
			zap.String("type", apiErr.Type),
			zap.Int("code", apiErr.Code),
		)
		return mcp.NewToolResultError(apiErr.Error())
	}

	logger.Error("Graph request failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(err.Error())
}

func getObject(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	id, err := requiredString(args, "id")
	if err != nil {
		return nil, err
	}
	params, err := paramsArg(args, "args")
	if err != nil {
		return nil, err
	}
	return c.GetObject(ctx, id, params)
}

func getObjects(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	ids, err := stringsArg(args, "ids")
	if err != nil {
		return nil, err
	}
	params, err := paramsArg(args, "args")
	if err != nil {
		return nil, err
	}
	return c.GetObjects(ctx, ids, params)
}

func getConnections(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	id, err := requiredString(args, "id")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(args, "connection")
	if err != nil {
		return nil, err
	}
	params, err := paramsArg(args, "args")
	if err != nil {
		return nil, err
	}
	return c.GetConnections(ctx, id, name, params)
}

func putObject(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	parentID, err := requiredString(args, "parent_id")
	if err != nil {
		return nil, err
	}
	name, err := requiredString(args, "connection")
	if err != nil {
		return nil, err
	}
	data, err := paramsArg(args, "data")
	if err != nil {
		return nil, err
	}
	return c.PutObject(ctx, parentID, name, data)
}

func putWallPost(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	message, err := requiredString(args, "message")
	if err != nil {
		return nil, err
	}
	attachment, err := paramsArg(args, "attachment")
	if err != nil {
		return nil, err
	}
	profileID, err := optionalString(args, "profile_id")
	if err != nil {
		return nil, err
	}
	return c.PutWallPost(ctx, message, attachment, profileID)
}

func putLike(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	objectID, err := requiredString(args, "object_id")
	if err != nil {
		return nil, err
	}
	return c.PutLike(ctx, objectID)
}

func putComment(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	objectID, err := requiredString(args, "object_id")
	if err != nil {
		return nil, err
	}
	message, err := requiredString(args, "message")
	if err != nil {
		return nil, err
	}
	return c.PutComment(ctx, objectID, message)
}

func deleteObject(ctx context.Context, c *graph.Client, args map[string]interface{}) (*graph.Result, error) {
	id, err := requiredString(args, "id")
	if err != nil {
		return nil, err
	}
	return c.DeleteObject(ctx, id)
}

func requiredString(args map[string]interface{}, name string) (string, error) {
	s, err := optionalString(args, name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", &ArgumentError{Name: name, Reason: "is required"}
	}
	return s, nil
}

func optionalString(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Name: name, Reason: "must be a string"}
	}
	return s, nil
}

// stringsArg accepts a JSON array of strings or a comma-separated string.
func stringsArg(args map[string]interface{}, name string) ([]string, error) {
	var out []string
	switch v := args[name].(type) {
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ArgumentError{Name: name, Reason: "must contain only strings"}
			}
			out = append(out, s)
		}
	case []string:
		out = v
	case string:
		if v != "" {
			out = strings.Split(v, ",")
		}
	case nil:
	default:
		return nil, &ArgumentError{Name: name, Reason: "must be an array of strings"}
	}
	if len(out) == 0 {
		return nil, &ArgumentError{Name: name, Reason: "is required"}
	}
	return out, nil
}

// paramsArg flattens an object argument into Graph parameters. Strings are
// sent as-is, other values as their JSON encoding.
func paramsArg(args map[string]interface{}, name string) (graph.Params, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ArgumentError{Name: name, Reason: "must be an object"}
	}

	params := make(graph.Params, len(m))
	for key, value := range m {
		if s, ok := value.(string); ok {
			params[key] = s
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, &ArgumentError{Name: name + "." + key, Reason: "cannot be encoded"}
		}
		params[key] = string(b)
	}
	return params, nil
}
