package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/gateway"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps sentinel errors to HTTP responses. Unknown errors
// collapse to 500 with a generic message so internals do not leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, role.ErrNoAccess):
		writeError(w, http.StatusForbidden, "no_access", "actor has no access to this project")
	case errors.Is(err, role.ErrInsufficientRole):
		writeError(w, http.StatusForbidden, "insufficient_role", "actor role does not permit this operation")
	case errors.Is(err, gateway.ErrUnknownTool):
		writeError(w, http.StatusNotFound, "unknown_tool", "tool not found")
	case errors.Is(err, gateway.ErrServerRequired):
		writeError(w, http.StatusBadRequest, "server_required", "server_id is required in individual mode")
	case errors.Is(err, gateway.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "upstream server did not respond")
	case errors.Is(err, server.ErrNameTaken):
		writeError(w, http.StatusConflict, "name_taken", "server name already used in this project")
	case errors.Is(err, server.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", "server name must match [a-z0-9][a-z0-9_-]*")
	case errors.Is(err, role.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown_role", "role must be one of reporter, developer, owner")
	case errors.Is(err, preference.ErrUnknownServer):
		writeError(w, http.StatusNotFound, "unknown_server", "server not registered in this project")
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, server.ErrServerNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, server.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, preference.ErrInvalidInput),
		errors.Is(err, gateway.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return false
	}
	return true
}
