package tool

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names, one per Graph client operation.
const (
	GetObject      = "graph_get_object"
	GetObjects     = "graph_get_objects"
	GetConnections = "graph_get_connections"
	PutObject      = "graph_put_object"
	PutWallPost    = "graph_put_wall_post"
	PutLike        = "graph_put_like"
	PutComment     = "graph_put_comment"
	DeleteObject   = "graph_delete_object"
)

// Definition pairs a tool with the Graph call that serves it.
type Definition struct {
	Tool mcp.Tool
	Call Func
}

func argsOption(name, desc string) mcp.ToolOption {
	return mcp.WithObject(name, mcp.Description(desc))
}

// Definitions returns every Graph tool in registration order.
func Definitions() []Definition {
	return []Definition{
		{
			Tool: mcp.NewTool(GetObject,
				mcp.WithDescription("Fetch a single Graph object by id, e.g. a user, page or post. Use \"me\" for the caller."),
				mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
				argsOption("args", "Extra query arguments such as fields, as string values"),
			),
			Call: getObject,
		},
		{
			Tool: mcp.NewTool(GetObjects,
				mcp.WithDescription("Fetch several Graph objects in one request. The result maps each id to its object."),
				mcp.WithArray("ids", mcp.Required(), mcp.Description("Object ids"), mcp.Items(map[string]any{"type": "string"})),
				argsOption("args", "Extra query arguments such as fields, as string values"),
			),
			Call: getObjects,
		},
		{
			Tool: mcp.NewTool(GetConnections,
				mcp.WithDescription("List the objects connected to an object through an edge, e.g. friends, feed or likes."),
				mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
				mcp.WithString("connection", mcp.Required(), mcp.Description("Edge name")),
				argsOption("args", "Extra query arguments such as limit, as string values"),
			),
			Call: getConnections,
		},
		{
			Tool: mcp.NewTool(PutObject,
				mcp.WithDescription("Create an object on an edge of a parent object. Requires a token with publish permission."),
				mcp.WithString("parent_id", mcp.Required(), mcp.Description("Parent object id")),
				mcp.WithString("connection", mcp.Required(), mcp.Description("Edge name")),
				argsOption("data", "Fields of the new object, as string values"),
			),
			Call: putObject,
		},
		{
			Tool: mcp.NewTool(PutWallPost,
				mcp.WithDescription("Post a message to a profile's feed, optionally with an attachment."),
				mcp.WithString("message", mcp.Required(), mcp.Description("Message text")),
				argsOption("attachment", "Attachment fields such as name, link, caption, description and picture"),
				mcp.WithString("profile_id", mcp.Description("Profile to post to"), mcp.DefaultString("me")),
			),
			Call: putWallPost,
		},
		{
			Tool: mcp.NewTool(PutLike,
				mcp.WithDescription("Like an object as the caller."),
				mcp.WithString("object_id", mcp.Required(), mcp.Description("Object id")),
			),
			Call: putLike,
		},
		{
			Tool: mcp.NewTool(PutComment,
				mcp.WithDescription("Comment on an object as the caller."),
				mcp.WithString("object_id", mcp.Required(), mcp.Description("Object id")),
				mcp.WithString("message", mcp.Required(), mcp.Description("Comment text")),
			),
			Call: putComment,
		},
		{
			Tool: mcp.NewTool(DeleteObject,
				mcp.WithDescription("Delete an object owned by the caller."),
				mcp.WithString("id", mcp.Required(), mcp.Description("Object id")),
			),
			Call: deleteObject,
		},
	}
}
