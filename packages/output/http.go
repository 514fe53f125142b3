package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
)

// FormatHTTP writes a result as raw HTTP response text: the status line,
// the headers sorted by name, a blank line and the body. The text parses
// back with parser.ParseResponse.
func FormatHTTP(w io.Writer, r *runner.Result) error {
	var b strings.Builder
	b.WriteString(r.StatusLine)
	b.WriteByte('\n')
	for _, k := range sortedKeys(r.Headers) {
		fmt.Fprintf(&b, "%s: %s\n", k, r.Headers[k])
	}
	if r.Body != "" {
		b.WriteByte('\n')
		b.WriteString(r.Body)
		if !strings.HasSuffix(r.Body, "\n") {
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
