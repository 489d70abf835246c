package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Role is the single role carried by a back office user
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleCommercial  Role = "COMMERCIAL"
	RoleChefAtelier Role = "CHEF_ATELIER"
	RoleComptable   Role = "COMPTABLE"
	RoleReadonly    Role = "READONLY"
)

// AllRoles lists roles from most to least privileged
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCommercial, RoleChefAtelier, RoleComptable, RoleReadonly}
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// IsAdmin reports whether r is the administrator role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// HasAdminAccess reports whether r may open the back office at all
func (r Role) HasAdminAccess() bool {
	return r.IsValid() && r != RoleReadonly
}

// ReceivesNotifications reports whether users of this role get staff notifications
func (r Role) ReceivesNotifications() bool {
	return r == RoleAdmin || r == RoleManager
}

// Resource is a protected area of the API
type Resource string

const (
	ResourceProducts   Resource = "products"
	ResourceProjects   Resource = "projects"
	ResourceServices   Resource = "services"
	ResourceCategories Resource = "categories"
	ResourceOrders     Resource = "orders"
	ResourceQuotes     Resource = "quotes"
	ResourceMessages   Resource = "messages"
	ResourceUsers      Resource = "users"
	ResourceSettings   Resource = "settings"
	ResourceMedia      Resource = "media"
	ResourceReports    Resource = "reports"
)

// AllResources lists every protected resource
func AllResources() []Resource {
	return []Resource{
		ResourceProducts, ResourceProjects, ResourceServices, ResourceCategories, ResourceOrders,
		ResourceQuotes, ResourceMessages, ResourceUsers, ResourceSettings, ResourceMedia, ResourceReports,
	}
}

// Action is an operation on a resource. Manage implies every other action.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

var (
	all      = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionManage}
	crud     = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	viewOnly = []Action{ActionView}
)

var rolePermissions = map[Role]map[Resource][]Action{
	RoleAdmin: {
		ResourceProducts: all, ResourceProjects: all, ResourceServices: all, ResourceCategories: all,
		ResourceOrders: all, ResourceQuotes: all, ResourceMessages: all, ResourceUsers: all,
		ResourceSettings: all, ResourceMedia: all, ResourceReports: all,
	},
	RoleManager: {
		ResourceProducts:   crud,
		ResourceProjects:   crud,
		ResourceServices:   crud,
		ResourceCategories: crud,
		ResourceOrders:     {ActionView, ActionCreate, ActionEdit, ActionManage},
		ResourceQuotes:     {ActionView, ActionCreate, ActionEdit, ActionManage},
		ResourceMessages:   {ActionView, ActionCreate, ActionEdit},
		ResourceUsers:      viewOnly,
		ResourceSettings:   {ActionView, ActionEdit},
		ResourceMedia:      crud,
		ResourceReports:    {ActionView, ActionCreate, ActionEdit},
	},
	RoleCommercial: {
		ResourceProducts:   viewOnly,
		ResourceProjects:   viewOnly,
		ResourceServices:   viewOnly,
		ResourceCategories: viewOnly,
		ResourceOrders:     {ActionView, ActionCreate, ActionEdit, ActionManage},
		ResourceQuotes:     {ActionView, ActionCreate, ActionEdit, ActionManage},
		ResourceMessages:   {ActionView, ActionCreate, ActionEdit},
		ResourceMedia:      viewOnly,
		ResourceReports:    viewOnly,
	},
	RoleChefAtelier: {
		ResourceProducts:   {ActionView, ActionEdit},
		ResourceProjects:   {ActionView, ActionCreate, ActionEdit},
		ResourceServices:   viewOnly,
		ResourceCategories: viewOnly,
		ResourceOrders:     viewOnly,
		ResourceQuotes:     viewOnly,
		ResourceMessages:   viewOnly,
		ResourceMedia:      {ActionView, ActionCreate},
		ResourceReports:    viewOnly,
	},
	RoleComptable: {
		ResourceProducts:   viewOnly,
		ResourceProjects:   viewOnly,
		ResourceServices:   viewOnly,
		ResourceCategories: viewOnly,
		ResourceOrders:     {ActionView, ActionEdit},
		ResourceQuotes:     {ActionView, ActionEdit},
		ResourceMessages:   viewOnly,
		ResourceSettings:   viewOnly,
		ResourceMedia:      viewOnly,
		ResourceReports:    {ActionView, ActionCreate, ActionEdit, ActionManage},
	},
	RoleReadonly: {
		ResourceProducts:   viewOnly,
		ResourceProjects:   viewOnly,
		ResourceServices:   viewOnly,
		ResourceCategories: viewOnly,
		ResourceOrders:     viewOnly,
		ResourceQuotes:     viewOnly,
		ResourceMessages:   viewOnly,
		ResourceMedia:      viewOnly,
		ResourceReports:    viewOnly,
	},
}

// AllowedActions returns the actions granted to r on res, nil when none
func (r Role) AllowedActions(res Resource) []Action {
	return rolePermissions[r][res]
}

// CanAccess reports whether r has any permission on res
func (r Role) CanAccess(res Resource) bool {
	return len(r.AllowedActions(res)) > 0
}

// Can reports whether r may perform act on res
func (r Role) Can(act Action, res Resource) bool {
	for _, a := range r.AllowedActions(res) {
		if a == act || a == ActionManage {
			return true
		}
	}
	return false
}

// Permissions returns the full matrix row of r, used by the admin UI
func (r Role) Permissions() map[Resource][]Action {
	out := make(map[Resource][]Action, len(AllResources()))
	for _, res := range AllResources() {
		actions := r.AllowedActions(res)
		if actions == nil {
			actions = []Action{}
		}
		out[res] = actions
	}
	return out
}

// RolesAllowed returns every role that may perform act on res
func RolesAllowed(act Action, res Resource) []Role {
	var roles []Role
	for _, r := range AllRoles() {
		if r.Can(act, res) {
			roles = append(roles, r)
		}
	}
	return roles
}

// ActionForMethod maps an HTTP method to the action it performs
func ActionForMethod(method string) Action {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionEdit
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionView
	}
}

// ResourceFromPath returns the first path segment naming a resource
func ResourceFromPath(path string) (Resource, bool) {
	for _, seg := range strings.Split(path, "/") {
		res := Resource(seg)
		for _, known := range AllResources() {
			if res == known {
				return res, true
			}
		}
	}
	return "", false
}

// CodePermissionDenied is returned when a role lacks a permission
const CodePermissionDenied = "PERMISSION_DENIED"

// Authorize returns a PERMISSION_DENIED error when r may not perform act on res
func (r Role) Authorize(act Action, res Resource) error {
	if r == "" {
		return shared.NewDomainError("UNAUTHORIZED", "Authentication required")
	}
	if !r.Can(act, res) {
		return shared.NewDomainError(CodePermissionDenied, fmt.Sprintf("Permission denied: cannot %s %s", act, res))
	}
	return nil
}
