// Package storage contains an extensible interface for providing persistence
// to plugins and applications.
//
// Stores provide simple create, read, update, delete, and list operations.
// Models are represented as structs and should have a `PK() string` method.
//
// Examples:
//
//		openproject.Register(storage.Plugin(memory.New()))
//
//	 func (m *MyPlugin) Init(ctx context.Context, r *openproject.Registry) error {
//	   m.store = r.Get(storage.PluginName).(storage.Store)
//	 }
package storage

import "github.com/aakritigupta/openproject"

// PluginName can be used to query the storage plugin.
const PluginName = "storage"

// Plugin wraps a storage implementation for registration.
func Plugin(impl Store) openproject.Plugin {
	return &StoragePlugin{Store: impl}
}

// StoragePlugin exposes a Plugin interface for persisting data.
type StoragePlugin struct {
	Store
}

// From openproject.Plugin.
func (p *StoragePlugin) Name() string {
	return PluginName
}

// InitModel can be called by a plugin or application to perform per model
// initialization. Stores that do not implement ModelInitializer should still
// function correctly, but may store data in a shared table.
func (p *StoragePlugin) InitModel(m Model) error {
	if i, ok := p.Store.(ModelInitializer); ok {
		return i.InitModel(m)
	}
	return nil
}
