package role

import "strings"

// Role is a project-scoped permission level. Roles form a strict total
// order: Reporter < Developer < Owner. A higher role can do everything a
// lower role can.
type Role string

const (
	Reporter  Role = "reporter"
	Developer Role = "developer"
	Owner     Role = "owner"
)

var ranks = map[Role]int{
	Reporter:  1,
	Developer: 2,
	Owner:     3,
}

// Parse normalizes and validates a role string.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ranks[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// Allows reports whether an actor holding r may perform an operation that
// requires the given role. Unknown roles on either side never allow.
func (r Role) Allows(required Role) bool {
	actorRank, ok := ranks[r]
	if !ok {
		return false
	}
	requiredRank, ok := ranks[required]
	if !ok {
		return false
	}
	return actorRank >= requiredRank
}

// Authorize returns nil when actor meets the required role,
// ErrInsufficientRole otherwise.
func Authorize(actor, required Role) error {
	if !actor.Allows(required) {
		return ErrInsufficientRole
	}
	return nil
}

// Action is a gateway operation subject to role checks.
type Action string

const (
	ActionViewTools         Action = "view_tools"
	ActionExecuteTools      Action = "execute_tools"
	ActionManagePreferences Action = "manage_preferences"
	ActionInviteMembers     Action = "invite_members"
	ActionManageServers     Action = "manage_servers"
	ActionDeleteProject     Action = "delete_project"
	ActionTransferOwnership Action = "transfer_ownership"
	ActionChangeGatewayMode Action = "change_gateway_mode"
	ActionManageBilling     Action = "manage_billing"
	ActionManageSecurity    Action = "manage_security"
)

var requiredRoles = map[Action]Role{
	ActionViewTools:         Reporter,
	ActionExecuteTools:      Reporter,
	ActionManagePreferences: Developer,
	ActionInviteMembers:     Developer,
	ActionManageServers:     Developer,
	ActionDeleteProject:     Owner,
	ActionTransferOwnership: Owner,
	ActionChangeGatewayMode: Owner,
	ActionManageBilling:     Owner,
	ActionManageSecurity:    Owner,
}

// Required returns the minimum role for an action. Unlisted actions
// require Owner so new actions fail closed until mapped.
func Required(a Action) Role {
	if r, ok := requiredRoles[a]; ok {
		return r
	}
	return Owner
}
