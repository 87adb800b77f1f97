package config

import (
	"strings"
	"testing"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

func TestValidateConfigKeys(t *testing.T) {
	registryMu.Lock()
	original := registry
	registry = make(map[string]ConfigKeyInfo)
	registryMu.Unlock()

	defer func() {
		registryMu.Lock()
		registry = original
		registryMu.Unlock()
	}()

	RegisterConfigKeys(
		ConfigKeyInfo{Key: "accounts.selfRegistration", Type: "string"},
		ConfigKeyInfo{Key: "accounts.signingKey", Type: "string"},
		ConfigKeyInfo{Key: "accounts.sessionExpiration", Type: "duration"},
		ConfigKeyInfo{Key: "email.smtp.host", Type: "string"},
		ConfigKeyInfo{Key: "email.headers", Type: "map"},
	)

	testConfig := koanf.New(".")
	err := testConfig.Load(confmap.Provider(map[string]interface{}{
		"accounts.selfRegistrations": "manual", // Typo: extra 's'
		"accounts.signngKey":         "test",   // Typo: should be signingKey
		"email.smtp.host":            "localhost",
		"email.headers.replyTo":      "ops@example.com", // Child of registered map key
		"unknownKey":                 "value",
	}, "."), nil)
	if err != nil {
		t.Fatalf("Failed to load test config: %v", err)
	}

	warnings := ValidateConfigKeys(testConfig)

	byKey := map[string]ValidationWarning{}
	for _, w := range warnings {
		byKey[w.Key] = w
	}

	if len(warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}

	w, ok := byKey["accounts.selfRegistrations"]
	if !ok {
		t.Fatal("Expected warning for accounts.selfRegistrations typo")
	}
	hasSuggestion := false
	for _, s := range w.Suggestions {
		if s == "accounts.selfRegistration" {
			hasSuggestion = true
			break
		}
	}
	if !hasSuggestion {
		t.Errorf("Expected accounts.selfRegistration in suggestions, got %v", w.Suggestions)
	}

	w, ok = byKey["accounts.signngKey"]
	if !ok {
		t.Fatal("Expected warning for accounts.signngKey typo")
	}
	hasSuggestion = false
	for _, s := range w.Suggestions {
		if s == "accounts.signingKey" {
			hasSuggestion = true
			break
		}
	}
	if !hasSuggestion {
		t.Errorf("Expected accounts.signingKey in suggestions, got %v", w.Suggestions)
	}

	if _, ok := byKey["email.headers.replyTo"]; ok {
		t.Error("Did not expect warning for child of registered map key")
	}
	if _, ok := byKey["email.smtp.host"]; ok {
		t.Error("Did not expect warning for a registered key")
	}
	if _, ok := byKey["unknownKey"]; !ok {
		t.Error("Expected warning for unknownKey")
	}
}

func TestValidateKeysStrings(t *testing.T) {
	registryMu.Lock()
	original := registry
	registry = make(map[string]ConfigKeyInfo)
	registryMu.Unlock()

	defer func() {
		registryMu.Lock()
		registry = original
		registryMu.Unlock()
	}()

	RegisterConfigKey(ConfigKeyInfo{Key: "accounts.signingKey", Type: "string"})

	testConfig := koanf.New(".")
	_ = testConfig.Load(confmap.Provider(map[string]interface{}{
		"accounts.signngKey": "test",
	}, "."), nil)

	msgs := ValidateKeys(testConfig)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 warning string, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "accounts.signngKey") {
		t.Errorf("Warning %q does not mention the unknown key", msgs[0])
	}
}

func TestFormatValidationWarnings(t *testing.T) {
	warnings := []ValidationWarning{
		{
			Key:         "accounts.selfRegistrations",
			Suggestions: []string{"accounts.selfRegistration"},
		},
		{
			Key:         "unknownKey",
			Suggestions: []string{},
		},
	}

	result := FormatValidationWarnings(warnings)

	if !strings.Contains(result, "accounts.selfRegistrations") {
		t.Error("Expected formatted output to mention the misspelled key")
	}
	if !strings.Contains(result, "RegisterConfigKey") {
		t.Error("Expected formatted output to mention RegisterConfigKey")
	}
	if FormatValidationWarnings(nil) != "" {
		t.Error("Expected empty output for no warnings")
	}
}

func TestTransformEnv(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"OP__ACCOUNTS__SELF_REGISTRATION", "accounts.selfRegistration"},
		{"OP__EMAIL__SMTP__HOST", "email.smtp.host"},
		{"OP__ACCOUNTS__SIGNING_KEY", "accounts.signingKey"},
		{"OP__NAME", "name"},
	}

	for _, tt := range tests {
		if got := TransformEnv(tt.in); got != tt.expected {
			t.Errorf("TransformEnv(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
