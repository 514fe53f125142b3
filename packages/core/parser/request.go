package parser

import "strings"

// Methods lists the verbs that can start a request line.
var Methods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE", "CONNECT"}

type requestLine struct {
	verb  string
	url   string
	start int
	end   int
}

// parseRequestLine finds the request line in [from, end) and folds
// continuation lines into its URL.
func parseRequestLine(lines []string, from, end int) (requestLine, bool) {
	ln := from
	for ; ln < end; ln++ {
		t := strings.TrimSpace(lines[ln-1])
		if t == "" || isComment(t) || strings.HasPrefix(t, "@") {
			continue
		}
		break
	}
	if ln >= end {
		return requestLine{}, false
	}

	verb, rest, ok := splitVerb(strings.TrimSpace(lines[ln-1]))
	if !ok {
		return requestLine{}, false
	}

	var url strings.Builder
	url.WriteString(rest)
	last := ln

	for next := ln + 1; next < end; next++ {
		raw := lines[next-1]
		t := strings.TrimSpace(raw)
		if t == "" {
			break
		}
		if isComment(t) {
			last = next
			continue
		}
		if raw[0] != ' ' && raw[0] != '\t' {
			break
		}
		url.WriteString(t)
		last = next
	}

	return requestLine{verb: verb, url: url.String(), start: ln, end: last + 1}, true
}

func splitVerb(line string) (verb, rest string, ok bool) {
	for _, m := range Methods {
		if len(line) <= len(m) || !strings.HasPrefix(line, m) {
			continue
		}
		if c := line[len(m)]; c != ' ' && c != '\t' {
			continue
		}
		return m, strings.TrimSpace(line[len(m):]), true
	}
	return "", "", false
}
