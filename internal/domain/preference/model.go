package preference

import "time"

// ToolPreference is an explicit enable/disable override for one tool on one
// upstream server within one project. Absence of a record means the tool is
// enabled; records are created lazily on first explicit change and removed
// (not rewritten to true) when reverting to the default.
type ToolPreference struct {
	ProjectID string    `json:"project_id"`
	ServerID  string    `json:"server_id"`
	ToolName  string    `json:"tool_name"`
	Enabled   bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BulkEntry is one item of a bulk preference update.
type BulkEntry struct {
	ServerID string `json:"server_id"`
	ToolName string `json:"tool_name"`
	Enabled  bool   `json:"is_enabled"`
}

// BulkFailure names one bulk entry that could not be applied.
type BulkFailure struct {
	ServerID string `json:"server_id"`
	ToolName string `json:"tool_name"`
	Reason   string `json:"reason"`
}

// BulkSummary reports the outcome of a bulk update. Application is per entry:
// a failing entry never rolls back its siblings.
type BulkSummary struct {
	Applied []ToolPreference `json:"applied"`
	Failed  []BulkFailure    `json:"failed"`
}

// PartialFailure reports whether the summary carries mixed outcomes.
func (s *BulkSummary) PartialFailure() bool {
	return len(s.Failed) > 0 && len(s.Applied) > 0
}

// View is a one-shot snapshot of a project's disabled tools, loaded with a
// single query so list resolution doesn't issue one lookup per tool. It
// applies the same default-enabled rule as Service.IsEnabled.
type View struct {
	disabled map[prefKey]struct{}
}

type prefKey struct {
	serverID string
	toolName string
}

// Enabled reports whether a tool is enabled under the snapshot.
func (v *View) Enabled(serverID, toolName string) bool {
	if v == nil {
		return true
	}
	_, off := v.disabled[prefKey{serverID: serverID, toolName: toolName}]
	return !off
}
