package server

import "time"

// Server describes one upstream tool server configured for a project. The
// endpoint speaks the streamable MCP transport; the gateway never embeds
// transport details beyond this record.
type Server struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}
