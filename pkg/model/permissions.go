package model

// Role is a capability granted by a permission entry.
type Role string

const (
	RoleRead   Role = "read"
	RoleWrite  Role = "write"
	RoleManage Role = "manage"
)

// Implies reports whether holding r also grants other.
// manage implies write, write implies read.
func (r Role) Implies(other Role) bool {
	switch r {
	case RoleManage:
		return other == RoleManage || other == RoleWrite || other == RoleRead
	case RoleWrite:
		return other == RoleWrite || other == RoleRead
	case RoleRead:
		return other == RoleRead
	}
	return false
}

// AllowedPermissions is the effective capability set of a user on one resource.
// The WithView flags additionally count grants obtained through a shared view.
type AllowedPermissions struct {
	Read           bool `json:"read"`
	Write          bool `json:"write"`
	Manage         bool `json:"manage"`
	ReadWithView   bool `json:"readWithView"`
	WriteWithView  bool `json:"writeWithView"`
	ManageWithView bool `json:"manageWithView"`
}

// Union grants every capability held by either side.
func (a AllowedPermissions) Union(b AllowedPermissions) AllowedPermissions {
	return AllowedPermissions{
		Read:           a.Read || b.Read,
		Write:          a.Write || b.Write,
		Manage:         a.Manage || b.Manage,
		ReadWithView:   a.ReadWithView || b.ReadWithView,
		WriteWithView:  a.WriteWithView || b.WriteWithView,
		ManageWithView: a.ManageWithView || b.ManageWithView,
	}
}

// Intersect keeps only capabilities held by both sides.
func (a AllowedPermissions) Intersect(b AllowedPermissions) AllowedPermissions {
	return AllowedPermissions{
		Read:           a.Read && b.Read,
		Write:          a.Write && b.Write,
		Manage:         a.Manage && b.Manage,
		ReadWithView:   a.ReadWithView && b.ReadWithView,
		WriteWithView:  a.WriteWithView && b.WriteWithView,
		ManageWithView: a.ManageWithView && b.ManageWithView,
	}
}

// AllPermissions grants every capability.
func AllPermissions() AllowedPermissions {
	return AllowedPermissions{
		Read: true, Write: true, Manage: true,
		ReadWithView: true, WriteWithView: true, ManageWithView: true,
	}
}

// ResourcesPermissions is the permission map handed to the filter engine.
type ResourcesPermissions struct {
	Collections map[string]AllowedPermissions `json:"collections,omitempty"`
	LinkTypes   map[string]AllowedPermissions `json:"linkTypes,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	// Teams maps an organization id to the ids of teams the user belongs to there.
	Teams map[string][]string `json:"teams,omitempty"`
}

type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds,omitempty"`
}

// PermissionsHolder is any entity carrying a permission block.
type PermissionsHolder interface {
	GetPermissions() Permissions
}

type Organization struct {
	ID          string      `json:"id"`
	Code        string      `json:"code"`
	Permissions Permissions `json:"permissions,omitempty"`
}

func (o *Organization) GetPermissions() Permissions {
	return o.Permissions
}

type Project struct {
	ID             string      `json:"id"`
	Code           string      `json:"code"`
	OrganizationID string      `json:"organizationId"`
	Permissions    Permissions `json:"permissions,omitempty"`
}

func (p *Project) GetPermissions() Permissions {
	return p.Permissions
}

// View is a persisted perspective over a query.
type View struct {
	ID          string         `json:"id"`
	Code        string         `json:"code,omitempty"`
	Name        string         `json:"name,omitempty"`
	Query       Query          `json:"query"`
	Perspective string         `json:"perspective"`
	Config      map[string]any `json:"config,omitempty"`
	Permissions Permissions    `json:"permissions,omitempty"`
	Version     int64          `json:"version,omitempty"`
}

func (v *View) GetPermissions() Permissions {
	return v.Permissions
}

// IsNewerThan reports whether v should replace other in local state.
// An unversioned v never replaces an existing view.
func (v *View) IsNewerThan(other *View) bool {
	if other == nil {
		return true
	}
	return v.Version > 0 && (other.Version == 0 || v.Version > other.Version)
}

// Workspace is the (organization, project) pair scoping all queries.
type Workspace struct {
	OrganizationID string `json:"organizationId"`
	ProjectID      string `json:"projectId"`
}
