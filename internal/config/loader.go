package config

import (
	"sync"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

var defaultsOnce sync.Once

// EnsureDefaultsLoaded merges the defaults of all registered config keys
// into the given koanf instance, without overriding values that were already
// set by a config file or the environment. It is safe to call multiple times,
// only the first call has any effect.
func EnsureDefaultsLoaded(k *koanf.Koanf) {
	defaultsOnce.Do(func() {
		defaults := DefaultConfigs()
		if len(defaults) == 0 {
			return
		}
		merged := koanf.New(".")
		_ = merged.Load(confmap.Provider(defaults, "."), nil)
		_ = merged.Merge(k)
		*k = *merged
	})
}
