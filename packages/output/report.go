package output

import (
	"sort"

	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
	"github.com/abdul-hamid-achik/reqfile/packages/script"
)

// ResultView is the serializable form of an execution result.
type ResultView struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	File       string            `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int               `json:"line,omitempty" yaml:"line,omitempty"`
	State      string            `json:"state" yaml:"state"`
	Request    *RequestView      `json:"request,omitempty" yaml:"request,omitempty"`
	StatusLine string            `json:"statusLine,omitempty" yaml:"statusLine,omitempty"`
	StatusCode int               `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	Elapsed    int64             `json:"elapsedMs" yaml:"elapsedMs"`
	Scripts    []ScriptView      `json:"scripts,omitempty" yaml:"scripts,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

type RequestView struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

type ScriptView struct {
	Success bool              `json:"success" yaml:"success"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
	Logs    []string          `json:"logs,omitempty" yaml:"logs,omitempty"`
	Globals map[string]string `json:"globalVariableChanges,omitempty" yaml:"globalVariableChanges,omitempty"`
}

// NewResultView projects r. file is the request file path, if known.
func NewResultView(file string, r *runner.Result) ResultView {
	v := ResultView{
		ID:         r.ID.String(),
		File:       file,
		State:      r.State.String(),
		StatusLine: r.StatusLine,
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
		Elapsed:    r.Elapsed.Milliseconds(),
		Scripts:    scriptViews(r.ScriptResults),
	}
	if r.Section != nil {
		v.Name = DisplayName(r.Section)
		v.Line = r.Section.StartLine
	}
	if r.Request != nil {
		v.Request = &RequestView{
			Method:  r.Request.Method,
			URL:     r.Request.URL,
			Headers: r.Request.Headers,
			Body:    r.Request.Body,
		}
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

func scriptViews(results []script.Result) []ScriptView {
	if len(results) == 0 {
		return nil
	}
	views := make([]ScriptView, len(results))
	for i, s := range results {
		views[i] = ScriptView{Success: s.Success, Error: s.Error, Logs: s.Logs, Globals: s.GlobalVariableChanges}
	}
	return views
}

// FileView is the serializable form of a parsed request file.
type FileView struct {
	Path      string            `json:"path,omitempty" yaml:"path,omitempty"`
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Options   map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	Sections  []SectionView     `json:"sections" yaml:"sections"`
}

type SectionView struct {
	Name        string            `json:"name" yaml:"name"`
	StartLine   int               `json:"startLine" yaml:"startLine"`
	EndLine     int               `json:"endLine" yaml:"endLine"`
	IsDivider   bool              `json:"isDivider,omitempty" yaml:"isDivider,omitempty"`
	Verb        string            `json:"verb,omitempty" yaml:"verb,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Variables   map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Options     map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	PostScripts []PostScriptView  `json:"postScripts,omitempty" yaml:"postScripts,omitempty"`
}

type PostScriptView struct {
	Kind      string `json:"kind" yaml:"kind"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
	Source    string `json:"source" yaml:"source"`
}

// NewFileView projects a parsed file.
func NewFileView(path string, f *parser.ParsedFile) FileView {
	v := FileView{Path: path, Sections: make([]SectionView, 0, len(f.Sections))}
	if f.Preamble != nil {
		v.Variables = nonEmpty(f.Preamble.Variables)
		v.Options = nonEmpty(f.Preamble.Options)
	}

	for _, s := range f.Sections {
		sv := SectionView{
			Name:      s.Name,
			StartLine: s.StartLine,
			EndLine:   s.EndLine,
			IsDivider: s.IsDivider,
			Verb:      s.Verb,
			URL:       s.URL,
			Body:      f.BodyText(s),
		}
		if s.Preamble != nil {
			sv.Variables = nonEmpty(s.Preamble.Variables)
			sv.Options = nonEmpty(s.Preamble.Options)
		}
		if s.Headers != nil {
			sv.Headers = nonEmpty(s.Headers.Headers)
		}
		for _, ps := range s.PostScripts {
			sv.PostScripts = append(sv.PostScripts, PostScriptView{
				Kind:      ps.Kind.String(),
				StartLine: ps.StartLine,
				EndLine:   ps.EndLine,
				Source:    f.ScriptSource(ps),
			})
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

func nonEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
