package parser

import "strings"

// ParsedFile is the result of parsing a request file.
type ParsedFile struct {
	Preamble *Preamble
	Sections []*Section
	Lines    []string
}

// Preamble holds the variables and options declared in a run of lines.
type Preamble struct {
	StartLine int
	EndLine   int
	Variables map[string]string
	Options   map[string]string
}

type Section struct {
	Name      string
	StartLine int
	EndLine   int
	Preamble  *Preamble
	IsDivider bool

	Verb             string
	URL              string
	RequestStartLine int
	RequestEndLine   int

	Headers     *HeaderSection
	Body        *BodySection
	PostScripts []*PostScript
}

type HeaderSection struct {
	StartLine int
	EndLine   int
	Headers   map[string]string
}

// BodySection references the body lines of a section; the text is not copied.
type BodySection struct {
	StartLine int
	EndLine   int
}

type PostScriptKind int

const (
	PostScriptFile PostScriptKind = iota
	PostScriptInline
)

func (k PostScriptKind) String() string {
	switch k {
	case PostScriptFile:
		return "file"
	case PostScriptInline:
		return "script"
	default:
		return "unknown"
	}
}

func (k PostScriptKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type PostScript struct {
	StartLine int
	EndLine   int
	Kind      PostScriptKind
}

// HasRequest reports whether the section resolved a verb and URL.
func (s *Section) HasRequest() bool {
	return s != nil && !s.IsDivider && s.Verb != ""
}

// Contains reports whether line falls within the section.
func (s *Section) Contains(line int) bool {
	return line >= s.StartLine && line < s.EndLine
}

// Text joins the lines in [start, end) with newlines. Out of range bounds are clamped.
func (f *ParsedFile) Text(start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(f.Lines)+1 {
		end = len(f.Lines) + 1
	}
	if start >= end {
		return ""
	}
	return strings.Join(f.Lines[start-1:end-1], "\n")
}

// SectionAt returns the section containing line, or nil.
func (f *ParsedFile) SectionAt(line int) *Section {
	for _, s := range f.Sections {
		if s.Contains(line) {
			return s
		}
	}
	return nil
}

// SectionByName returns the first section with the given name, or nil.
func (f *ParsedFile) SectionByName(name string) *Section {
	for _, s := range f.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// BodyText returns the body of the section, or an empty string.
func (f *ParsedFile) BodyText(s *Section) string {
	if s == nil || s.Body == nil {
		return ""
	}
	return f.Text(s.Body.StartLine, s.Body.EndLine)
}

// ScriptSource returns the payload of a post-script. For inline scripts this
// is the code between {% and %}; for file scripts it is the referenced path.
func (f *ParsedFile) ScriptSource(ps *PostScript) string {
	text := strings.TrimSpace(f.Text(ps.StartLine, ps.EndLine))
	text = strings.TrimSpace(strings.TrimPrefix(text, ">"))
	if ps.Kind == PostScriptFile {
		return text
	}

	open := strings.Index(text, "{%")
	if open < 0 {
		return ""
	}
	code := text[open+2:]
	if end := strings.Index(code, "%}"); end >= 0 {
		code = code[:end]
	}
	return strings.TrimSpace(code)
}
