package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/graph"
	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// graphCall is one Graph operation bound to its command line arguments.
type graphCall func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error)

type graphCmdDef struct {
	use       string
	short     string
	args      cobra.PositionalArgs
	paramFlag string
	paramHelp string
	call      graphCall
}

func newGraphCmds() []*cobra.Command {
	defs := []graphCmdDef{
		{
			use:       "get <id>",
			short:     "Fetch a Graph object",
			args:      cobra.ExactArgs(1),
			paramFlag: "arg",
			paramHelp: "Query argument as key=value (repeatable)",
			call: func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error) {
				return c.GetObject(ctx, args[0], params)
			},
		},
		{
			use:       "get-many <id>...",
			short:     "Fetch several Graph objects in one request",
			args:      cobra.MinimumNArgs(1),
			paramFlag: "arg",
			paramHelp: "Query argument as key=value (repeatable)",
			call: func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error) {
				return c.GetObjects(ctx, args, params)
			},
		},
		{
			use:       "connections <id> <connection>",
			short:     "List the objects connected to an object",
			args:      cobra.ExactArgs(2),
			paramFlag: "arg",
			paramHelp: "Query argument as key=value (repeatable)",
			call: func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error) {
				return c.GetConnections(ctx, args[0], args[1], params)
			},
		},
		{
			use:       "put <parent-id> <connection>",
			short:     "Create an object on an edge",
			args:      cobra.ExactArgs(2),
			paramFlag: "data",
			paramHelp: "Field of the new object as key=value (repeatable)",
			call: func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error) {
				return c.PutObject(ctx, args[0], args[1], params)
			},
		},
		{
			use:       "wall-post <message> [profile-id]",
			short:     "Post a message to a feed",
			args:      cobra.RangeArgs(1, 2),
			paramFlag: "attachment",
			paramHelp: "Attachment field as key=value, e.g. link=https://example.com (repeatable)",
			call: func(ctx context.Context, c *graph.Client, args []string, params graph.Params) (*graph.Result, error) {
				profileID := ""
				if len(args) > 1 {
					profileID = args[1]
				}
				return c.PutWallPost(ctx, args[0], params, profileID)
			},
		},
		{
			use:   "like <object-id>",
			short: "Like an object",
			args:  cobra.ExactArgs(1),
			call: func(ctx context.Context, c *graph.Client, args []string, _ graph.Params) (*graph.Result, error) {
				return c.PutLike(ctx, args[0])
			},
		},
		{
			use:   "comment <object-id> <message>",
			short: "Comment on an object",
			args:  cobra.ExactArgs(2),
			call: func(ctx context.Context, c *graph.Client, args []string, _ graph.Params) (*graph.Result, error) {
				return c.PutComment(ctx, args[0], args[1])
			},
		},
		{
			use:   "delete <id>",
			short: "Delete an object",
			args:  cobra.ExactArgs(1),
			call: func(ctx context.Context, c *graph.Client, args []string, _ graph.Params) (*graph.Result, error) {
				return c.DeleteObject(ctx, args[0])
			},
		},
	}

	cmds := make([]*cobra.Command, 0, len(defs))
	for _, def := range defs {
		cmds = append(cmds, newGraphCmd(def))
	}
	return cmds
}

func newGraphCmd(def graphCmdDef) *cobra.Command {
	var pairs []string
	cmd := &cobra.Command{
		Use:   def.use,
		Short: def.short,
		Args:  def.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.InitLogger(&cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}
			client, err := newClient(&cfg.Graph)
			if err != nil {
				return err
			}

			res, err := runWithSpinner(cmd.Context(), func(ctx context.Context) (*graph.Result, error) {
				return def.call(ctx, client, args, params)
			})
			if err != nil {
				return describeGraphError(err)
			}
			return printResult(res)
		},
	}
	if def.paramFlag != "" {
		cmd.Flags().StringArrayVar(&pairs, def.paramFlag, nil, def.paramHelp)
	}
	return cmd
}

func newClient(cfg *config.GraphConfig) (*graph.Client, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return graph.New(cfg.AccessToken,
		graph.WithBaseURL(cfg.BaseURL),
		graph.WithTimeout(timeout),
		graph.WithHeaders(cfg.Headers),
	)
}

// runWithSpinner runs call asynchronously and shows a spinner on stderr
// until its outcome arrives.
func runWithSpinner(ctx context.Context, call graph.Call) (*graph.Result, error) {
	spinner, _ := pterm.DefaultSpinner.
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		WithDelay(100 * time.Millisecond).
		Start("Calling Graph API")

	out := <-graph.Async(ctx, call)
	if spinner != nil {
		_ = spinner.Stop()
	}
	return out.Result, out.Err
}

// parseParams turns repeated key=value flags into Graph parameters.
// A later pair overrides an earlier one with the same key.
func parseParams(pairs []string) (graph.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(graph.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func describeGraphError(err error) error {
	if apiErr, ok := graph.AsAPIError(err); ok {
		return fmt.Errorf("%s (type %s, code %d, trace %s)", apiErr.Message, apiErr.Type, apiErr.Code, apiErr.TraceID)
	}
	return err
}

func printResult(res *graph.Result) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	buf.WriteByte('\n')
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}
