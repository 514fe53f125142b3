package parser

import "strings"

// parseHeadersAndBody fills in headers, body and post-scripts for the lines
// following the request line of s.
func parseHeadersAndBody(lines []string, s *Section) {
	ln := s.RequestEndLine
	end := s.EndLine

	headers := make(map[string]string)
	headerEnd := ln
	for ; ln < end; ln++ {
		t := strings.TrimSpace(lines[ln-1])
		if t == "" {
			break
		}
		headerEnd = ln + 1
		if isComment(t) {
			continue
		}
		if idx := strings.Index(t, ":"); idx > 0 {
			headers[strings.TrimSpace(t[:idx])] = strings.TrimSpace(t[idx+1:])
		}
	}
	if len(headers) > 0 {
		s.Headers = &HeaderSection{
			StartLine: s.RequestEndLine,
			EndLine:   headerEnd,
			Headers:   headers,
		}
	}

	bodyStart, bodyEnd := 0, 0
	for ln++; ln < end; ln++ {
		t := strings.TrimSpace(lines[ln-1])
		if t == "" || isComment(t) {
			continue
		}
		if strings.HasPrefix(t, ">") {
			ps, last := parsePostScript(lines, ln, end)
			s.PostScripts = append(s.PostScripts, ps)
			ln = last
			continue
		}
		if len(s.PostScripts) > 0 {
			continue
		}
		if bodyStart == 0 {
			bodyStart = ln
		}
		bodyEnd = ln + 1
	}
	if bodyStart > 0 {
		s.Body = &BodySection{StartLine: bodyStart, EndLine: bodyEnd}
	}
}

// parsePostScript reads the post-script starting at ln and returns it with
// the last line it consumed.
func parsePostScript(lines []string, ln, end int) (*PostScript, int) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[ln-1]), ">"))
	if !strings.HasPrefix(rest, "{%") {
		return &PostScript{StartLine: ln, EndLine: ln + 1, Kind: PostScriptFile}, ln
	}

	if strings.Contains(rest[2:], "%}") {
		return &PostScript{StartLine: ln, EndLine: ln + 1, Kind: PostScriptInline}, ln
	}
	for next := ln + 1; next < end; next++ {
		if strings.Contains(lines[next-1], "%}") {
			return &PostScript{StartLine: ln, EndLine: next + 1, Kind: PostScriptInline}, next
		}
	}
	// Unclosed scripts run to the end of the section.
	return &PostScript{StartLine: ln, EndLine: end, Kind: PostScriptInline}, end - 1
}
