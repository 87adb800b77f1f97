// Package news provides project-scoped news items and their visibility rules.
//
// A news item belongs to exactly one project. Whether a user can see an item
// is derived per request from the user's membership roles in that project,
// never stored. Authorship grants nothing, visibility comes only from the
// "view_news" permission.
package news

import (
	"context"
	"time"

	"github.com/aakritigupta/openproject"
	"github.com/aakritigupta/openproject/plugins/authz"
	"github.com/aakritigupta/openproject/plugins/storage"
)

// Constant name for identifying the news plugin.
const PluginName = "news"

// RequiredPermission must be granted by a role in the owning project for a
// user to see its news.
const RequiredPermission = authz.Permission("view_news")

// News is a project-scoped announcement.
type News struct {
	ID        string
	ProjectID string
	Author    string
	Title     string
	Summary   string
	Body      string
	CreatedAt time.Time
}

// Implements storage.Model.
func (n *News) PK() string {
	return n.ID
}

// Plugin returns a new NewsPlugin.
func Plugin() *NewsPlugin {
	return &NewsPlugin{}
}

// NewsPlugin manages news items and answers visibility queries.
type NewsPlugin struct {
	store storage.Store
	authz *authz.AuthzPlugin
}

// From openproject.Plugin.
func (p *NewsPlugin) Name() string {
	return PluginName
}

// From openproject.DependentPlugin.
func (p *NewsPlugin) Deps() []string {
	return []string{storage.PluginName, authz.PluginName}
}

// From openproject.InitializablePlugin.
func (p *NewsPlugin) Init(ctx context.Context, r *openproject.Registry) error {
	sp := r.Get(storage.PluginName).(*storage.StoragePlugin)
	p.store = sp
	p.authz = r.Get(authz.PluginName).(*authz.AuthzPlugin)
	return sp.InitModel(&News{})
}

// Add persists a news item.
func (p *NewsPlugin) Add(ctx context.Context, n *News) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return p.store.Create(ctx, n)
}

// IsVisible reports whether the user may see the item. Users with no
// membership in the owning project are always denied, including the author.
func (p *NewsPlugin) IsVisible(ctx context.Context, login string, n *News) (bool, error) {
	return p.authz.Allowed(ctx, login, n.ProjectID, RequiredPermission)
}

// Visible returns all news items the user may see. Consistent with IsVisible
// by construction, every candidate passes through the same predicate.
func (p *NewsPlugin) Visible(ctx context.Context, login string) ([]News, error) {
	var all []News
	if err := p.store.List(ctx, &all, &News{}); err != nil {
		return nil, err
	}
	// Memoize the per-project decision, a project's answer is the same for
	// every item it owns.
	decisions := map[string]bool{}
	out := []News{}
	for i := range all {
		n := &all[i]
		ok, seen := decisions[n.ProjectID]
		if !seen {
			var err error
			ok, err = p.IsVisible(ctx, login, n)
			if err != nil {
				return nil, err
			}
			decisions[n.ProjectID] = ok
		}
		if ok {
			out = append(out, *n)
		}
	}
	return out, nil
}

// VisibleInProject returns the news items in a single project the user may
// see. Either all of the project's items or none.
func (p *NewsPlugin) VisibleInProject(ctx context.Context, login, projectID string) ([]News, error) {
	ok, err := p.authz.Allowed(ctx, login, projectID, RequiredPermission)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []News{}, nil
	}
	var items []News
	if err := p.store.List(ctx, &items, &News{ProjectID: projectID}); err != nil {
		return nil, err
	}
	return items, nil
}
