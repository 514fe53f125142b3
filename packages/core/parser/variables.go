package parser

import "strings"

// ExtractMode selects which declarations ExtractVariables collects.
type ExtractMode int

const (
	// ModeVariables collects @name=value lines.
	ModeVariables ExtractMode = iota
	// ModeOptions collects #@name=value lines.
	ModeOptions
)

// ExtractVariables collects declarations in lines [start, end). Later
// declarations of the same name win.
func ExtractVariables(lines []string, start, end int, mode ExtractMode) map[string]string {
	vars := make(map[string]string)
	if start < 1 {
		start = 1
	}
	if end > len(lines)+1 {
		end = len(lines) + 1
	}

	for ln := start; ln < end; ln++ {
		rest, ok := declaration(strings.TrimSpace(lines[ln-1]), mode)
		if !ok {
			continue
		}
		name, value := splitAssignment(rest)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

func declaration(t string, mode ExtractMode) (string, bool) {
	switch mode {
	case ModeVariables:
		if strings.HasPrefix(t, "@") {
			return t[1:], true
		}
	case ModeOptions:
		if !strings.HasPrefix(t, "#") {
			return "", false
		}
		after := strings.TrimLeft(t[1:], " \t")
		if strings.HasPrefix(after, "@") {
			return after[1:], true
		}
	}
	return "", false
}

func splitAssignment(rest string) (name, value string) {
	rest = strings.TrimSpace(rest)
	if idx := strings.Index(rest, "="); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:])
	}
	if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
		return rest[:idx], strings.TrimSpace(rest[idx:])
	}
	return rest, ""
}
