package http

import (
	"encoding/base64"
	"strings"
)

// NormalizeBasicAuth base64-encodes plain user:password credentials in Basic
// Authorization headers. Headers that are not Basic auth, or whose
// credential has no colon, are returned unchanged.
func NormalizeBasicAuth(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			v = normalizeBasic(v)
		}
		out[k] = v
	}
	return out
}

func normalizeBasic(value string) string {
	trimmed := strings.TrimSpace(value)
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return value
	}
	scheme, credential := trimmed[:idx], strings.TrimSpace(trimmed[idx:])
	if !strings.EqualFold(scheme, "Basic") || !strings.Contains(credential, ":") {
		return value
	}
	return scheme + " " + base64.StdEncoding.EncodeToString([]byte(credential))
}
