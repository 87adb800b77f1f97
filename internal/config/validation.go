package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/v2"
)

// ValidationWarning describes a config key that was set but never registered,
// along with likely intended keys.
type ValidationWarning struct {
	Key         string
	Suggestions []string
}

// String formats the warning as a human-readable message.
func (w ValidationWarning) String() string {
	switch len(w.Suggestions) {
	case 0:
		return fmt.Sprintf("'%s' is not a known config key", w.Key)
	case 1:
		return fmt.Sprintf("'%s' is not a known config key. Did you mean '%s'?", w.Key, w.Suggestions[0])
	default:
		return fmt.Sprintf("'%s' is not a known config key. Did you mean one of these? %s",
			w.Key, strings.Join(w.Suggestions, ", "))
	}
}

// ValidateConfigKeys compares the keys present in the loaded configuration
// against the set of registered keys and returns a warning for each unknown
// key, with suggestions for likely misspellings.
func ValidateConfigKeys(k *koanf.Koanf) []ValidationWarning {
	var warnings []ValidationWarning

	keys := k.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		if IsRegisteredKey(key) || isChildOfRegisteredKey(key) {
			continue
		}
		warnings = append(warnings, ValidationWarning{
			Key:         key,
			Suggestions: FindSimilarKeys(key, 3),
		})
	}

	return warnings
}

// ValidateKeys runs ValidateConfigKeys and returns the warnings as plain
// strings, for callers that only want to log them.
func ValidateKeys(k *koanf.Koanf) []string {
	warnings := ValidateConfigKeys(k)
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// FormatValidationWarnings renders warnings as a block suitable for startup
// logs.
func FormatValidationWarnings(warnings []ValidationWarning) string {
	if len(warnings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("⚠️  Unrecognized config keys detected:\n")
	for _, w := range warnings {
		b.WriteString("  - ")
		b.WriteString(w.String())
		b.WriteString("\n")
	}
	b.WriteString("If these keys are intentional, document them with RegisterConfigKey.\n")
	return b.String()
}

// isChildOfRegisteredKey reports whether key is nested under a registered
// key. Map-valued keys register the parent only, e.g. registering
// "email.headers" permits "email.headers.replyTo".
func isChildOfRegisteredKey(key string) bool {
	for {
		idx := strings.LastIndex(key, ".")
		if idx < 0 {
			return false
		}
		key = key[:idx]
		if IsRegisteredKey(key) {
			return true
		}
	}
}
