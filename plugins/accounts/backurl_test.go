package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBackURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		host      string
		want      string
	}{
		{"relative path", "/work_packages/42", "op.example.com", "/work_packages/42"},
		{"relative with query", "/search?q=timeline", "op.example.com", "/search?q=timeline"},
		{"encoded relative path", "%2Fwork_packages%2F42", "op.example.com", "/work_packages/42"},
		{"same host absolute", "https://op.example.com/news/1", "op.example.com", "https://op.example.com/news/1"},
		{"encoded same host", "https%3A%2F%2Fop.example.com%2Fnews%2F1", "op.example.com", "https://op.example.com/news/1"},
		{"foreign host", "https://evil.example.net/phish", "op.example.com", DefaultBackURL},
		{"encoded foreign host", "https%3A%2F%2Fevil.example.net%2Fphish", "op.example.com", DefaultBackURL},
		{"subdomain is a different host", "https://evil.op.example.com/", "op.example.com", DefaultBackURL},
		{"host with different port", "https://op.example.com:8443/x", "op.example.com", DefaultBackURL},
		{"schemeless foreign host", "//evil.example.net/x", "op.example.com", DefaultBackURL},
		{"empty candidate", "", "op.example.com", DefaultBackURL},
		{"bad escape", "%zz", "op.example.com", DefaultBackURL},
		{"unparseable url", "https://evil%gh", "op.example.com", DefaultBackURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeBackURL(tt.candidate, tt.host, DefaultBackURL)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeBackURLCustomFallback(t *testing.T) {
	got := SanitizeBackURL("https://evil.example.net/", "op.example.com", "/home")
	assert.Equal(t, "/home", got)
}
