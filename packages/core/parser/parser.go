package parser

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSectionMarker starts a new section when it begins a line.
const DefaultSectionMarker = "###"

// Parser splits request files into a preamble and sections.
type Parser struct {
	marker string
}

type Option func(*Parser)

// WithSectionMarker overrides the section marker. Markers must be three
// identical characters; anything else is ignored.
func WithSectionMarker(marker string) Option {
	return func(p *Parser) {
		if ValidSectionMarker(marker) {
			p.marker = marker
		}
	}
}

// ValidSectionMarker reports whether marker is three identical characters.
func ValidSectionMarker(marker string) bool {
	r := []rune(marker)
	return len(r) == 3 && r[0] == r[1] && r[1] == r[2] && strings.TrimSpace(marker) == marker
}

func New(opts ...Option) *Parser {
	p := &Parser{marker: DefaultSectionMarker}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text with the default section marker.
func Parse(text string, opts ...Option) *ParsedFile {
	return New(opts...).Parse(text)
}

// ParseFile reads path from fs and parses it.
func ParseFile(fs afero.Fs, path string, opts ...Option) (*ParsedFile, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return Parse(string(content), opts...), nil
}

func (p *Parser) Parse(text string) *ParsedFile {
	lines := splitLines(text)
	end := len(lines) + 1

	var markers []int
	for i, line := range lines {
		if strings.HasPrefix(line, p.marker) {
			markers = append(markers, i+1)
		}
	}

	preambleEnd := end
	if len(markers) > 0 {
		preambleEnd = markers[0]
	}

	file := &ParsedFile{
		Lines:    lines,
		Preamble: newPreamble(lines, 1, preambleEnd),
	}

	sections := make([]*Section, 0, len(markers))
	for i, start := range markers {
		sectionEnd := end
		if i+1 < len(markers) {
			sectionEnd = markers[i+1]
		}
		sections = append(sections, p.parseSection(lines, start, sectionEnd))
	}

	file.Sections = dropEdgeDividers(sections)
	return file
}

func (p *Parser) parseSection(lines []string, start, end int) *Section {
	s := &Section{
		Name:      strings.TrimSpace(strings.TrimPrefix(lines[start-1], p.marker)),
		StartLine: start,
		EndLine:   end,
	}

	req, ok := parseRequestLine(lines, start+1, end)
	if !ok {
		s.IsDivider = true
		return s
	}

	s.Verb = req.verb
	s.URL = req.url
	s.RequestStartLine = req.start
	s.RequestEndLine = req.end

	if start+1 < req.start {
		s.Preamble = newPreamble(lines, start+1, req.start)
	}

	parseHeadersAndBody(lines, s)
	return s
}

func newPreamble(lines []string, start, end int) *Preamble {
	return &Preamble{
		StartLine: start,
		EndLine:   end,
		Variables: ExtractVariables(lines, start, end, ModeVariables),
		Options:   ExtractVariables(lines, start, end, ModeOptions),
	}
}

// dropEdgeDividers removes a divider that is the first or last section.
func dropEdgeDividers(sections []*Section) []*Section {
	n := len(sections)
	kept := make([]*Section, 0, n)
	for i, s := range sections {
		if s.IsDivider && (i == 0 || i == n-1) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
