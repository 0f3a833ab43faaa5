// Package permission computes the effective capabilities of a user on the
// resources of a workspace. Grants from every source are unioned; there is
// no explicit deny.
package permission

import (
	"reflect"
	"slices"

	"github.com/kubedo8/web-ui/pkg/model"
)

// Resolve computes what user may do with resource inside the workspace of
// organization and project. A manager of the organization or the project is
// granted every capability. Absent inputs yield no access.
func Resolve(user *model.User, organization *model.Organization, project *model.Project, resource model.PermissionsHolder, teams []model.Team) model.AllowedPermissions {
	if user == nil || isNil(resource) {
		return model.AllowedPermissions{}
	}
	if IsManager(user, organization, project, teams) {
		return model.AllPermissions()
	}
	return fromRoles(userRoles(user, organizationID(organization, project), resource, teams))
}

// ResolveOrganization considers only roles held directly or through teams on the organization.
func ResolveOrganization(user *model.User, organization *model.Organization, teams []model.Team) model.AllowedPermissions {
	if user == nil || organization == nil {
		return model.AllowedPermissions{}
	}
	return fromRoles(userRoles(user, organization.ID, organization, teams))
}

// ResolveProject unions the roles on project with the organization manager override.
func ResolveProject(user *model.User, organization *model.Organization, project *model.Project, teams []model.Team) model.AllowedPermissions {
	if user == nil || project == nil {
		return model.AllowedPermissions{}
	}
	if organization != nil && HasRole(user, organization.ID, organization, teams, model.RoleManage) {
		return model.AllPermissions()
	}
	return fromRoles(userRoles(user, organizationID(organization, project), project, teams))
}

// ResolveWithView is Resolve extended by the roles view grants to user. The
// WithView flags are only raised when resource lies in the view's query scope.
func ResolveWithView(user *model.User, organization *model.Organization, project *model.Project, resource model.PermissionsHolder, teams []model.Team, view *model.View, inViewScope bool) model.AllowedPermissions {
	allowed := Resolve(user, organization, project, resource, teams)
	if user == nil || isNil(resource) || view == nil || !inViewScope {
		return allowed
	}

	viewRoles := userRoles(user, organizationID(organization, project), view, teams)
	return allowed.Union(model.AllowedPermissions{
		ReadWithView:   viewRoles[model.RoleRead],
		WriteWithView:  viewRoles[model.RoleWrite],
		ManageWithView: viewRoles[model.RoleManage],
	})
}

// IsManager reports whether user manages the organization or the project.
func IsManager(user *model.User, organization *model.Organization, project *model.Project, teams []model.Team) bool {
	if user == nil {
		return false
	}
	orgID := organizationID(organization, project)
	if organization != nil && HasRole(user, orgID, organization, teams, model.RoleManage) {
		return true
	}
	return project != nil && HasRole(user, orgID, project, teams, model.RoleManage)
}

// HasRole reports whether user holds role on holder directly or through a
// team of the organization. Unknown roles are never held.
func HasRole(user *model.User, organizationID string, holder model.PermissionsHolder, teams []model.Team, role model.Role) bool {
	if user == nil || isNil(holder) {
		return false
	}
	return userRoles(user, organizationID, holder, teams)[role]
}

// Allows reports whether allowed contains the capability named by role,
// counting grants obtained through a view when withView is set.
func Allows(allowed model.AllowedPermissions, role model.Role, withView bool) bool {
	switch role {
	case model.RoleRead:
		return allowed.Read || (withView && allowed.ReadWithView)
	case model.RoleWrite:
		return allowed.Write || (withView && allowed.WriteWithView)
	case model.RoleManage:
		return allowed.Manage || (withView && allowed.ManageWithView)
	}
	return false
}

// userRoles collects the roles user holds on holder, expanded by implication.
func userRoles(user *model.User, organizationID string, holder model.PermissionsHolder, teams []model.Team) map[model.Role]bool {
	permissions := holder.GetPermissions()
	granted := make([]model.Role, 0)
	for _, p := range permissions.Users {
		if p.ID == user.ID {
			granted = append(granted, p.Roles...)
		}
	}

	teamIDs := userTeamIDs(user, organizationID, teams)
	for _, p := range permissions.Groups {
		if slices.Contains(teamIDs, p.ID) {
			granted = append(granted, p.Roles...)
		}
	}

	roles := make(map[model.Role]bool, 3)
	for _, candidate := range []model.Role{model.RoleRead, model.RoleWrite, model.RoleManage} {
		for _, role := range granted {
			if role.Implies(candidate) {
				roles[candidate] = true
				break
			}
		}
	}
	return roles
}

// userTeamIDs merges the memberships recorded on the user with those recorded on teams.
func userTeamIDs(user *model.User, organizationID string, teams []model.Team) []string {
	ids := slices.Clone(user.Teams[organizationID])
	for _, team := range teams {
		if slices.Contains(team.UserIDs, user.ID) && !slices.Contains(ids, team.ID) {
			ids = append(ids, team.ID)
		}
	}
	return ids
}

func fromRoles(roles map[model.Role]bool) model.AllowedPermissions {
	return model.AllowedPermissions{
		Read:           roles[model.RoleRead],
		Write:          roles[model.RoleWrite],
		Manage:         roles[model.RoleManage],
		ReadWithView:   roles[model.RoleRead],
		WriteWithView:  roles[model.RoleWrite],
		ManageWithView: roles[model.RoleManage],
	}
}

func organizationID(organization *model.Organization, project *model.Project) string {
	if organization != nil {
		return organization.ID
	}
	if project != nil {
		return project.OrganizationID
	}
	return ""
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(holder model.PermissionsHolder) bool {
	if holder == nil {
		return true
	}
	v := reflect.ValueOf(holder)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
