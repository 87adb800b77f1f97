// Package authz provides role-based access control scoped to projects.
//
// Permissions are application defined strings attached to roles. Members bind
// a user to a project with one or more roles; a user's capability set within a
// project is the union of the permissions granted by those roles. A user has
// at most one membership per project, enforced by the membership primary key.
//
// Usage:
//
//	authzPlugin := authz.Plugin()
//	registry.Register(storage.Plugin(memory.New()))
//	registry.Register(authzPlugin)
//
//	ok, err := authzPlugin.Allowed(ctx, "alice", projectID, authz.Permission("view_news"))
package authz

import (
	"sort"
	"strings"
)

// Permission is a named capability grant, e.g. "view_news".
type Permission string

// PermissionSet is the union of permissions a user holds within a project.
type PermissionSet map[Permission]bool

// Has returns true if the permission is present in the set.
func (ps PermissionSet) Has(p Permission) bool {
	return ps[p]
}

// List returns the permissions in the set, sorted for stable output.
func (ps PermissionSet) List() []Permission {
	out := make([]Permission, 0, len(ps))
	for p := range ps {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnionPermissions computes the combined permission set across roles. Roles
// passed by value so callers can use stored or ad-hoc role data.
func UnionPermissions(roles []Role) PermissionSet {
	ps := PermissionSet{}
	for _, r := range roles {
		for _, p := range r.Permissions {
			ps[p] = true
		}
	}
	return ps
}

// Role is a named permission set.
type Role struct {
	ID          string
	Name        string
	Permissions []Permission
}

// Implements storage.Model.
func (r *Role) PK() string {
	return r.ID
}

// Project is the scoping context for resources and memberships.
type Project struct {
	ID   string
	Name string
}

// Implements storage.Model.
func (p *Project) PK() string {
	return p.ID
}

// Member binds a user to a project with a set of roles. The primary key is
// derived from (login, project) so a user can hold at most one membership per
// project.
type Member struct {
	Login     string
	ProjectID string
	RoleIDs   []string
}

// Implements storage.Model.
func (m *Member) PK() string {
	return MemberKey(m.Login, m.ProjectID)
}

// MemberKey returns the storage key for a user's membership in a project.
func MemberKey(login, projectID string) string {
	return strings.Join([]string{login, projectID}, "/")
}
