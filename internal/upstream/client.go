// Package upstream implements the gateway's upstream client contract over
// the MCP streamable HTTP transport. Connections are per call: the gateway
// never caches connectivity between resolutions, so a server that went away
// is discovered on the next call rather than misattributed.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/gateway"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
)

// Client talks to upstream tool servers over the MCP protocol.
type Client struct {
	impl       *sdkmcp.Implementation
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an upstream client. The per-call deadline comes from the
// caller's context; timeout here only bounds the raw HTTP exchanges.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		impl: &sdkmcp.Implementation{
			Name:    "mcp-orch-gateway",
			Version: "0.1.0",
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListTools fetches the server's current tool list.
func (c *Client) ListTools(ctx context.Context, srv server.Server) ([]gateway.ToolInfo, error) {
	sess, err := c.connect(ctx, srv)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools on %s: %w", srv.Name, err)
	}

	tools := make([]gateway.ToolInfo, 0, len(res.Tools))
	for _, tool := range res.Tools {
		info := gateway.ToolInfo{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.InputSchema != nil {
			schema, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("encoding schema for %s: %w", tool.Name, err)
			}
			info.InputSchema = schema
		}
		tools = append(tools, info)
	}

	return tools, nil
}

// Invoke calls one tool on the server and returns its raw content.
func (c *Client) Invoke(ctx context.Context, srv server.Server, toolName string, args json.RawMessage) (*gateway.InvokeResult, error) {
	sess, err := c.connect(ctx, srv)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	params := &sdkmcp.CallToolParams{Name: toolName}
	if len(args) > 0 {
		params.Arguments = args
	}

	res, err := sess.CallTool(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", toolName, srv.Name, err)
	}

	content, err := json.Marshal(res.Content)
	if err != nil {
		return nil, fmt.Errorf("encoding result content: %w", err)
	}

	return &gateway.InvokeResult{
		Content: content,
		IsError: res.IsError,
	}, nil
}

func (c *Client) connect(ctx context.Context, srv server.Server) (*sdkmcp.ClientSession, error) {
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint:   srv.Endpoint,
		HTTPClient: c.httpClient,
	}

	client := sdkmcp.NewClient(c.impl, nil)
	sess, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", srv.Name, err)
	}
	return sess, nil
}
