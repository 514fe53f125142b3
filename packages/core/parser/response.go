package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var statusLinePattern = regexp.MustCompile(`^HTTP/[\d.]+\s+(\d{3})`)

// ResponseRange is a half-open line range inside a response document.
type ResponseRange struct {
	StartLine int
	EndLine   int
}

// ParsedResponse describes raw HTTP response text such as the output of
// a previous run.
type ParsedResponse struct {
	StatusLine string
	StatusCode int
	Headers    *ResponseRange
	Body       *ResponseRange
	Lines      []string
}

// ParseResponse parses response text. It returns false when the first line
// is not an HTTP status line.
func ParseResponse(text string) (*ParsedResponse, bool) {
	lines := splitLines(text)
	m := statusLinePattern.FindStringSubmatch(lines[0])
	if m == nil {
		return nil, false
	}
	code, _ := strconv.Atoi(m[1])

	resp := &ParsedResponse{
		StatusLine: strings.TrimSpace(lines[0]),
		StatusCode: code,
		Lines:      lines,
	}

	ln := 2
	end := len(lines) + 1
	for ln < end && !isBlank(lines[ln-1]) {
		ln++
	}
	if ln > 2 {
		resp.Headers = &ResponseRange{StartLine: 2, EndLine: ln}
	}
	if ln >= end {
		return resp, true
	}

	bodyEnd := end
	for bodyEnd > ln+1 && isBlank(lines[bodyEnd-2]) {
		bodyEnd--
	}
	if bodyEnd > ln+1 {
		resp.Body = &ResponseRange{StartLine: ln + 1, EndLine: bodyEnd}
	}
	return resp, true
}

// HeaderMap returns the key: value pairs of the header block.
func (r *ParsedResponse) HeaderMap() map[string]string {
	headers := make(map[string]string)
	if r.Headers == nil {
		return headers
	}
	for ln := r.Headers.StartLine; ln < r.Headers.EndLine; ln++ {
		line := r.Lines[ln-1]
		if idx := strings.Index(line, ":"); idx > 0 {
			headers[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
		}
	}
	return headers
}

// BodyText returns the body lines joined with newlines.
func (r *ParsedResponse) BodyText() string {
	if r.Body == nil {
		return ""
	}
	return strings.Join(r.Lines[r.Body.StartLine-1:r.Body.EndLine-1], "\n")
}
