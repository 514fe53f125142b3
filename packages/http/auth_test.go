package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"plain credentials", "Authorization", "Basic user:pass", "Basic dXNlcjpwYXNz"},
		{"case-insensitive header", "authorization", "Basic user:pass", "Basic dXNlcjpwYXNz"},
		{"scheme case preserved", "Authorization", "basic user:pass", "basic dXNlcjpwYXNz"},
		{"extra whitespace", "Authorization", "  Basic   user:pass ", "Basic dXNlcjpwYXNz"},
		{"already encoded", "Authorization", "Basic dXNlcjpwYXNz", "Basic dXNlcjpwYXNz"},
		{"bearer", "Authorization", "Bearer a:b", "Bearer a:b"},
		{"scheme only", "Authorization", "Basic", "Basic"},
		{"other header", "X-Auth", "Basic user:pass", "Basic user:pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBasicAuth(map[string]string{tt.key: tt.value, "Accept": "*/*"})
			assert.Equal(t, tt.expected, got[tt.key])
			assert.Equal(t, "*/*", got["Accept"])
		})
	}
}

func TestNormalizeBasicAuth_DoesNotMutateInput(t *testing.T) {
	in := map[string]string{"Authorization": "Basic a:b"}
	_ = NormalizeBasicAuth(in)
	assert.Equal(t, "Basic a:b", in["Authorization"])
}
