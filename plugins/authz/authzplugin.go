package authz

import (
	"context"

	"github.com/aakritigupta/openproject"
	"github.com/aakritigupta/openproject/errors"
	"github.com/aakritigupta/openproject/plugins/storage"
)

// Constant name for identifying the authz plugin.
const PluginName = "authz"

// Configuration option for the AuthzPlugin.
type AuthzOption func(*AuthzPlugin)

// Plugin returns a new AuthzPlugin.
func Plugin(opts ...AuthzOption) *AuthzPlugin {
	p := &AuthzPlugin{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthzPlugin resolves project memberships and permission sets from storage.
type AuthzPlugin struct {
	store storage.Store
}

// From openproject.Plugin.
func (p *AuthzPlugin) Name() string {
	return PluginName
}

// From openproject.DependentPlugin.
func (p *AuthzPlugin) Deps() []string {
	return []string{storage.PluginName}
}

// From openproject.InitializablePlugin.
func (p *AuthzPlugin) Init(ctx context.Context, r *openproject.Registry) error {
	sp := r.Get(storage.PluginName).(*storage.StoragePlugin)
	p.store = sp
	if err := sp.InitModel(&Role{}); err != nil {
		return err
	}
	if err := sp.InitModel(&Project{}); err != nil {
		return err
	}
	if err := sp.InitModel(&Member{}); err != nil {
		return err
	}
	return nil
}

// AddRole persists a role definition.
func (p *AuthzPlugin) AddRole(ctx context.Context, role *Role) error {
	return p.store.Create(ctx, role)
}

// AddProject persists a project.
func (p *AuthzPlugin) AddProject(ctx context.Context, project *Project) error {
	return p.store.Create(ctx, project)
}

// AddMember binds a user to a project with the given roles. Replaces any
// existing membership for the same (login, project) pair.
func (p *AuthzPlugin) AddMember(ctx context.Context, member *Member) error {
	return p.store.Upsert(ctx, member)
}

// Membership returns the user's membership in the project, or nil when the
// user is not a member.
func (p *AuthzPlugin) Membership(ctx context.Context, login, projectID string) (*Member, error) {
	m := &Member{}
	err := p.store.Read(ctx, MemberKey(login, projectID), m)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Permissions computes the union of permissions granted to the user by their
// membership in the project. Users with no membership get an empty set.
func (p *AuthzPlugin) Permissions(ctx context.Context, login, projectID string) (PermissionSet, error) {
	m, err := p.Membership(ctx, login, projectID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return PermissionSet{}, nil
	}
	roles := make([]Role, 0, len(m.RoleIDs))
	for _, id := range m.RoleIDs {
		r := Role{}
		if err := p.store.Read(ctx, id, &r); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Dangling role reference grants nothing.
				continue
			}
			return nil, err
		}
		roles = append(roles, r)
	}
	return UnionPermissions(roles), nil
}

// Allowed returns true if the user holds a role in the project granting the
// permission. No membership means denial.
func (p *AuthzPlugin) Allowed(ctx context.Context, login, projectID string, perm Permission) (bool, error) {
	ps, err := p.Permissions(ctx, login, projectID)
	if err != nil {
		return false, err
	}
	return ps.Has(perm), nil
}
