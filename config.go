package openproject

import (
	"time"

	"github.com/aakritigupta/openproject/internal/config"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Filename of the standard configuration file.
const ConfigFile = "openproject.yaml"

// ConfigKeyInfo contains metadata about a known configuration key.
// This is re-exported from internal/config for public API use.
type ConfigKeyInfo = config.ConfigKeyInfo

// Config is a global koanf instance used to access application level
// configuration options.
//
// Config is loaded in the following order (later sources override earlier):
// 1. Registered defaults (loaded lazily via EnsureConfigDefaults)
// 2. Auto-discovered openproject.yaml (in init())
// 3. Environment variables with OP__ prefix (in init())
// 4. Additional sources loaded via LoadConfigFile() or LoadConfigDefaults()
//
// Environment variable transformation:
//   - OP__EMAIL__FROM → email.from
//   - OP__ACCOUNTS__SELF_REGISTRATION → accounts.selfRegistration
//   - OP__FOO_BAR__BAZ → fooBar.baz
var Config = koanf.New(".")

func init() {
	registerCoreConfigKeys()

	// Look for an openproject.yaml file in the current directory or any parent.
	if cfg := config.SearchForConfig(ConfigFile, "."); cfg != "" {
		if err := Config.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			panic("error loading config: " + err.Error())
		}
	}

	// Load environment variables with the prefix OP__.
	if err := Config.Load(env.Provider("OP__", ".", config.TransformEnv), nil); err != nil {
		panic("error loading env config: " + err.Error())
	}
}

// registerCoreConfigKeys registers application-level configuration keys with
// their defaults. Called from init() before any config loading happens.
func registerCoreConfigKeys() {
	config.RegisterConfigKeys(
		ConfigKeyInfo{
			Key:         "name",
			Description: "User-facing name that identifies the installation",
			Type:        "string",
			Default:     "OpenProject",
		},
		ConfigKeyInfo{
			Key:         "address",
			Description: "External address for the installation (used in URL construction)",
			Type:        "string",
			Default:     "http://localhost:8080",
		},
	)
}

// RegisterConfigKey registers a known configuration key with metadata.
// This should be called by core code and plugins to document expected config
// keys.
//
// Example:
//
//	openproject.RegisterConfigKey(openproject.ConfigKeyInfo{
//	    Key:         "accounts.signingKey",
//	    Description: "JWT signing key for session tokens",
//	    Type:        "string",
//	})
func RegisterConfigKey(info ConfigKeyInfo) {
	config.RegisterConfigKey(info)
}

// RegisterConfigKeys registers multiple configuration keys at once.
func RegisterConfigKeys(infos ...ConfigKeyInfo) {
	config.RegisterConfigKeys(infos...)
}

// EnsureConfigDefaults loads registered defaults for keys that have not been
// set by a file or the environment. Plugins call this from their constructors
// so that key registration in init() functions has completed first.
func EnsureConfigDefaults() {
	config.EnsureDefaultsLoaded(Config)
}

// ValidateConfigKeys returns warnings for config keys that are set but not
// registered, with suggestions for likely typos.
func ValidateConfigKeys() []string {
	return config.ValidateKeys(Config)
}

// LoadConfigFile loads additional configuration from a YAML file into the
// global Config instance.
//
// Example:
//
//	openproject.LoadConfigFile("./app.yaml")
func LoadConfigFile(path string) {
	if err := Config.Load(file.Provider(path), yaml.Parser()); err != nil {
		panic("error loading config file '" + path + "': " + err.Error())
	}
}

// LoadConfigDefaults loads default configuration values into the global
// Config instance. Call this before creating plugins to provide
// application-specific defaults that can be overridden by files or env vars.
//
// Example:
//
//	openproject.LoadConfigDefaults(map[string]interface{}{
//	    "accounts.selfRegistration": "email",
//	})
func LoadConfigDefaults(defaults map[string]interface{}) {
	if err := Config.Load(confmap.Provider(defaults, "."), nil); err != nil {
		panic("error loading config defaults: " + err.Error())
	}
}

// Configuration Access Functions
//
// These functions provide a clean API for accessing configuration values.
// They delegate to the underlying Config instance.

// ConfigString returns the string value for the given key.
func ConfigString(key string) string {
	return Config.String(key)
}

// ConfigInt returns the int value for the given key.
func ConfigInt(key string) int {
	return Config.Int(key)
}

// ConfigBool returns the bool value for the given key.
func ConfigBool(key string) bool {
	return Config.Bool(key)
}

// ConfigDuration returns the duration value for the given key.
func ConfigDuration(key string) time.Duration {
	return Config.Duration(key)
}

// ConfigStrings returns the []string value for the given key.
func ConfigStrings(key string) []string {
	return Config.Strings(key)
}

// ConfigMustDuration returns the duration value for the given key, panicking
// if the key is unset or zero. Use for keys where a zero value would leave a
// component silently broken.
func ConfigMustDuration(key string) time.Duration {
	d := Config.Duration(key)
	if d == 0 {
		panic("config: missing required duration for key '" + key + "'")
	}
	return d
}
