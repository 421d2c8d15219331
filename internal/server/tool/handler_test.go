package tool

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/brizzai/graph-mcp/internal/auth/middleware"
	"github.com/brizzai/graph-mcp/internal/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method string
	path   string
	query  url.Values
	form   url.Values
}

type fakeGraph struct {
	*httptest.Server
	mu     sync.Mutex
	seen   []seenRequest
	status int
	body   string
}

func newFakeGraph(t *testing.T) *fakeGraph {
	f := &fakeGraph{status: http.StatusOK, body: `{"id":"42"}`}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		f.mu.Lock()
		f.seen = append(f.seen, seenRequest{method: r.Method, path: r.URL.Path, query: r.URL.Query(), form: form})
		status, body := f.status, f.body
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGraph) last(t *testing.T) seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.seen, "no request reached the fake Graph server")
	return f.seen[len(f.seen)-1]
}

func findDefinition(t *testing.T, name string) Definition {
	for _, def := range Definitions() {
		if def.Tool.Name == name {
			return def
		}
	}
	t.Fatalf("tool %s not defined", name)
	return Definition{}
}

func callTool(t *testing.T, h *Handler, ctx context.Context, name string, args map[string]interface{}) *mcp.CallToolResult {
	def := findDefinition(t, name)
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	res, err := h.CreateHandler(&def.Tool, def.Call)(ctx, request)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestDefinitions(t *testing.T) {
	want := []string{GetObject, GetObjects, GetConnections, PutObject, PutWallPost, PutLike, PutComment, DeleteObject}
	var got []string
	for _, def := range Definitions() {
		assert.NotEmpty(t, def.Tool.Description, def.Tool.Name)
		assert.NotNil(t, def.Call, def.Tool.Name)
		got = append(got, def.Tool.Name)
	}
	assert.Equal(t, want, got)
}

func TestHandler_Tools(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		args       map[string]interface{}
		wantMethod string
		wantPath   string
		wantQuery  map[string]string
		wantForm   map[string]string
	}{
		{
			name:       "get object with fields",
			tool:       GetObject,
			args:       map[string]interface{}{"id": "me", "args": map[string]interface{}{"fields": "id,name"}},
			wantMethod: http.MethodGet,
			wantPath:   "/me",
			wantQuery:  map[string]string{"fields": "id,name", "access_token": "tok"},
		},
		{
			name:       "get objects from array",
			tool:       GetObjects,
			args:       map[string]interface{}{"ids": []interface{}{"1", "2"}},
			wantMethod: http.MethodGet,
			wantPath:   "/",
			wantQuery:  map[string]string{"ids": "1,2"},
		},
		{
			name:       "get objects from comma string",
			tool:       GetObjects,
			args:       map[string]interface{}{"ids": "3,4"},
			wantMethod: http.MethodGet,
			wantPath:   "/",
			wantQuery:  map[string]string{"ids": "3,4"},
		},
		{
			name:       "get connections with numeric limit",
			tool:       GetConnections,
			args:       map[string]interface{}{"id": "me", "connection": "friends", "args": map[string]interface{}{"limit": float64(5)}},
			wantMethod: http.MethodGet,
			wantPath:   "/me/friends",
			wantQuery:  map[string]string{"limit": "5"},
		},
		{
			name:       "put object",
			tool:       PutObject,
			args:       map[string]interface{}{"parent_id": "p1", "connection": "notes", "data": map[string]interface{}{"subject": "hi"}},
			wantMethod: http.MethodPost,
			wantPath:   "/p1/notes",
			wantForm:   map[string]string{"subject": "hi", "access_token": "tok"},
		},
		{
			name:       "wall post defaults to me",
			tool:       PutWallPost,
			args:       map[string]interface{}{"message": "hello", "attachment": map[string]interface{}{"link": "http://x"}},
			wantMethod: http.MethodPost,
			wantPath:   "/me/feed",
			wantForm:   map[string]string{"message": "hello", "link": "http://x"},
		},
		{
			name:       "wall post to profile",
			tool:       PutWallPost,
			args:       map[string]interface{}{"message": "hello", "profile_id": "page1"},
			wantMethod: http.MethodPost,
			wantPath:   "/page1/feed",
			wantForm:   map[string]string{"message": "hello"},
		},
		{
			name:       "like",
			tool:       PutLike,
			args:       map[string]interface{}{"object_id": "o1"},
			wantMethod: http.MethodPost,
			wantPath:   "/o1/likes",
			wantQuery:  map[string]string{"access_token": "tok"},
		},
		{
			name:       "comment",
			tool:       PutComment,
			args:       map[string]interface{}{"object_id": "o1", "message": "nice"},
			wantMethod: http.MethodPost,
			wantPath:   "/o1/comments",
			wantForm:   map[string]string{"message": "nice"},
		},
		{
			name:       "delete",
			tool:       DeleteObject,
			args:       map[string]interface{}{"id": "o1"},
			wantMethod: http.MethodDelete,
			wantPath:   "/o1",
			wantQuery:  map[string]string{"access_token": "tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGraph(t)
			client, err := graph.New("tok", graph.WithBaseURL(fake.URL))
			require.NoError(t, err)

			res := callTool(t, NewHandler(client, false), context.Background(), tt.tool, tt.args)
			assert.False(t, res.IsError, resultText(t, res))
			assert.JSONEq(t, `{"id":"42"}`, resultText(t, res))

			got := fake.last(t)
			assert.Equal(t, tt.wantMethod, got.method)
			assert.Equal(t, tt.wantPath, got.path)
			for k, v := range tt.wantQuery {
				assert.Equal(t, v, got.query.Get(k), "query %s", k)
			}
			for k, v := range tt.wantForm {
				assert.Equal(t, v, got.form.Get(k), "form %s", k)
			}
		})
	}
}

func TestHandler_ArgumentErrors(t *testing.T) {
	fake := newFakeGraph(t)
	client, err := graph.New("tok", graph.WithBaseURL(fake.URL))
	require.NoError(t, err)
	h := NewHandler(client, false)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
		want string
	}{
		{name: "missing id", tool: GetObject, args: map[string]interface{}{}, want: `"id" is required`},
		{name: "id not a string", tool: GetObject, args: map[string]interface{}{"id": 3.0}, want: `"id" must be a string`},
		{name: "args not an object", tool: GetObject, args: map[string]interface{}{"id": "me", "args": "fields=id"}, want: `"args" must be an object`},
		{name: "empty ids", tool: GetObjects, args: map[string]interface{}{"ids": []interface{}{}}, want: `"ids" is required`},
		{name: "ids with numbers", tool: GetObjects, args: map[string]interface{}{"ids": []interface{}{1.0}}, want: `"ids" must contain only strings`},
		{name: "missing comment message", tool: PutComment, args: map[string]interface{}{"object_id": "o"}, want: `"message" is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, h, context.Background(), tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.seen, "invalid arguments must not reach the Graph API")
}

func TestHandler_GraphErrors(t *testing.T) {
	fake := newFakeGraph(t)
	fake.status = http.StatusBadRequest
	fake.body = `{"error":{"type":"OAuthException","code":190,"message":"Invalid OAuth access token."}}`
	client, err := graph.New("tok", graph.WithBaseURL(fake.URL))
	require.NoError(t, err)

	res := callTool(t, NewHandler(client, false), context.Background(), GetObject, map[string]interface{}{"id": "me"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Invalid OAuth access token.")
	assert.Contains(t, resultText(t, res), "OAuthException")

	fake.status = http.StatusOK
	fake.body = `not json`
	res = callTool(t, NewHandler(client, false), context.Background(), GetObject, map[string]interface{}{"id": "me"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "parse error")
}

func TestHandler_Auth(t *testing.T) {
	fake := newFakeGraph(t)
	client, err := graph.New("server-token", graph.WithBaseURL(fake.URL))
	require.NoError(t, err)

	t.Run("required and missing", func(t *testing.T) {
		res := callTool(t, NewHandler(client, true), context.Background(), GetObject, map[string]interface{}{"id": "me"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "Unauthorized")
	})

	t.Run("session token replaces client token", func(t *testing.T) {
		ctx := middleware.WithAuthInfo(context.Background(), &middleware.AuthInfo{UserID: "7", Token: "user-token"})
		res := callTool(t, NewHandler(client, true), ctx, GetObject, map[string]interface{}{"id": "me"})
		assert.False(t, res.IsError)
		assert.Equal(t, "user-token", fake.last(t).query.Get("access_token"))
	})

	t.Run("optional falls back to client token", func(t *testing.T) {
		res := callTool(t, NewHandler(client, false), context.Background(), GetObject, map[string]interface{}{"id": "me"})
		assert.False(t, res.IsError)
		assert.Equal(t, "server-token", fake.last(t).query.Get("access_token"))
	})
}
