package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNotJSON = errors.New("response body is not JSON")
	ErrNoMatch = errors.New("query matched nothing")
)

// Query evaluates a gjson path against a JSON body. Strings are returned
// unquoted, everything else as raw JSON.
func Query(body, path string) (string, error) {
	if !gjson.Valid(body) {
		return "", ErrNotJSON
	}
	res := gjson.Get(body, path)
	if !res.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, path)
	}
	if res.Type == gjson.String {
		return res.String(), nil
	}
	return res.Raw, nil
}

// PrettyBody indents JSON bodies and returns anything else unchanged.
func PrettyBody(body string) string {
	if body == "" || !gjson.Valid(body) {
		return body
	}
	return strings.TrimRight(gjson.Get(body, "@pretty").Raw, "\n")
}
