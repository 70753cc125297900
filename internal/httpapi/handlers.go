package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/gateway"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
)

// Handler exposes the gateway's project-scoped REST surface.
type Handler struct {
	projects *project.Service
	servers  *server.Service
	prefs    *preference.Service
	sessions *session.Service
	gateway  *gateway.Service
	logger   *slog.Logger
}

// NewHandler creates a handler over the domain services.
func NewHandler(
	projects *project.Service,
	servers *server.Service,
	prefs *preference.Service,
	sessions *session.Service,
	gw *gateway.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		projects: projects,
		servers:  servers,
		prefs:    prefs,
		sessions: sessions,
		gateway:  gw,
		logger:   logger,
	}
}

// authorize resolves the actor's role in the URL's project and checks it
// against the action's required role. On failure it writes the response and
// returns ok=false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action role.Action) (projectID, actorID string, ok bool) {
	projectID = chi.URLParam(r, "projectID")
	actorID, found := ActorFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no authenticated actor")
		return "", "", false
	}

	actorRole, err := h.projects.RoleOf(r.Context(), projectID, actorID)
	if err != nil {
		writeDomainError(w, err)
		return "", "", false
	}
	if err := role.Authorize(actorRole, role.Required(action)); err != nil {
		writeDomainError(w, err)
		return "", "", false
	}
	return projectID, actorID, true
}

// Projects

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	actorID, found := ActorFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no authenticated actor")
		return
	}
	var req createProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	proj, err := h.projects.Create(r.Context(), project.CreateRequest{Name: req.Name, OwnerID: actorID})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	proj, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionDeleteProject)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type gatewayModeRequest struct {
	Unified bool `json:"unified"`
}

func (h *Handler) getGatewayMode(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	unified, err := h.projects.UnifiedEnabled(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unified": unified})
}

func (h *Handler) setGatewayMode(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionChangeGatewayMode)
	if !ok {
		return
	}
	var req gatewayModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.projects.SetUnifiedEnabled(r.Context(), projectID, req.Unified); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unified": req.Unified})
}

// Members

type addMemberRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	granted, err := role.Parse(req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Granting ownership is an ownership transfer, not a plain invite. The
	// same holds for rewriting the role of someone who already owns the
	// project: AddMember upserts, so without this check an invite could
	// demote the owner.
	action := role.ActionInviteMembers
	if granted == role.Owner {
		action = role.ActionTransferOwnership
	}
	current, err := h.projects.RoleOf(r.Context(), chi.URLParam(r, "projectID"), req.ActorID)
	switch {
	case err == nil && current == role.Owner:
		action = role.ActionTransferOwnership
	case err != nil && !errors.Is(err, role.ErrNoAccess):
		writeDomainError(w, err)
		return
	}

	projectID, _, ok := h.authorize(w, r, action)
	if !ok {
		return
	}

	member, err := h.projects.AddMember(r.Context(), projectID, req.ActorID, granted)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// Servers

type registerServerRequest struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

func (h *Handler) registerServer(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionManageServers)
	if !ok {
		return
	}
	var req registerServerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	srv, err := h.servers.Register(r.Context(), server.RegisterRequest{
		ProjectID: projectID,
		Name:      req.Name,
		Endpoint:  req.Endpoint,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, srv)
}

func (h *Handler) listServers(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	servers, err := h.servers.ListByProject(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"servers": servers})
}

func (h *Handler) deleteServer(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionManageServers)
	if !ok {
		return
	}
	if err := h.servers.Delete(r.Context(), projectID, chi.URLParam(r, "serverID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tools

func (h *Handler) listTools(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	result, err := h.gateway.Resolve(r.Context(), projectID, r.URL.Query().Get("server_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) callTool(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionExecuteTools)
	if !ok {
		return
	}
	var req gateway.DispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.gateway.Dispatch(r.Context(), projectID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Preferences

func (h *Handler) listPreferences(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	prefs, err := h.prefs.List(r.Context(), projectID, r.URL.Query().Get("server_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

type setPreferenceRequest struct {
	ServerID string `json:"server_id"`
	ToolName string `json:"tool_name"`
	Enabled  bool   `json:"is_enabled"`
}

func (h *Handler) setPreference(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionManagePreferences)
	if !ok {
		return
	}
	var req setPreferenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pref, err := h.prefs.SetOne(r.Context(), projectID, req.ServerID, req.ToolName, req.Enabled)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

type bulkPreferencesRequest struct {
	Entries []preference.BulkEntry `json:"entries"`
}

func (h *Handler) bulkPreferences(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionManagePreferences)
	if !ok {
		return
	}
	var req bulkPreferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	summary, err := h.prefs.SetBulk(r.Context(), projectID, req.Entries)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if len(summary.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, summary)
}

func (h *Handler) deletePreference(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionManagePreferences)
	if !ok {
		return
	}
	serverID := r.URL.Query().Get("server_id")
	toolName := r.URL.Query().Get("tool_name")
	if serverID == "" || toolName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "server_id and tool_name are required")
		return
	}
	if err := h.prefs.Delete(r.Context(), projectID, serverID, toolName); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sessions

type openSessionRequest struct {
	ClientType    string            `json:"client_type"`
	ClientVersion string            `json:"client_version"`
	Metadata      map[string]string `json:"metadata"`
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionExecuteTools)
	if !ok {
		return
	}
	var req openSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.sessions.Open(r.Context(), session.OpenRequest{
		ProjectID:     projectID,
		ServerID:      chi.URLParam(r, "serverID"),
		ClientType:    req.ClientType,
		ClientVersion: req.ClientVersion,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) listActiveSessions(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	sessions, err := h.sessions.ListActive(r.Context(), projectID, chi.URLParam(r, "serverID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	page, err := h.sessions.ListRecent(r.Context(), session.ListRecentOptions{
		ProjectID:  projectID,
		ServerID:   q.Get("server_id"),
		Limit:      limit,
		Offset:     offset,
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionViewTools)
	if !ok {
		return
	}
	sess, err := h.sessions.Get(r.Context(), projectID, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	projectID, _, ok := h.authorize(w, r, role.ActionExecuteTools)
	if !ok {
		return
	}
	reason := r.URL.Query().Get("reason")
	if err := h.sessions.Close(r.Context(), projectID, chi.URLParam(r, "sessionID"), reason); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
