package gateway

import "encoding/json"

// ToolInfo is one tool as reported live by an upstream server.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// EffectiveTool is the derived, per-request view of a callable tool. It is
// never persisted. In unified mode Name carries the namespaced
// "{server_name}.{tool_name}" form; in individual mode it equals Tool.
type EffectiveTool struct {
	Name        string          `json:"name"`
	ServerID    string          `json:"server_id"`
	ServerName  string          `json:"server_name"`
	Tool        string          `json:"tool_name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// ServerStatus reports one upstream server's contribution to a resolution.
// A failing server keeps its slot with an error string instead of aborting
// the whole resolution.
type ServerStatus struct {
	ServerID   string `json:"server_id"`
	ServerName string `json:"server_name"`
	ToolCount  int    `json:"tool_count"`
	Error      string `json:"error,omitempty"`
}

// ResolveResult is the effective callable surface of a project.
type ResolveResult struct {
	Unified bool            `json:"unified"`
	Tools   []EffectiveTool `json:"tools"`
	Servers []ServerStatus  `json:"servers"`
}

// DispatchRequest names a tool to invoke. In unified mode Name carries the
// namespaced form and ServerID is ignored; in individual mode ServerID
// scopes the bare tool name. SessionID, when set, attributes the call's
// outcome to a client session after the result is known.
type DispatchRequest struct {
	Name      string          `json:"name"`
	ServerID  string          `json:"server_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// InvokeResult is the upstream server's reply to a tool invocation.
type InvokeResult struct {
	Content json.RawMessage `json:"content,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
}

// DispatchResult attributes an invocation result to its owning server.
type DispatchResult struct {
	ServerID   string          `json:"server_id"`
	ServerName string          `json:"server_name"`
	Tool       string          `json:"tool_name"`
	Content    json.RawMessage `json:"content,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
}
