package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
)

// JSONOutput represents the complete JSON output of a run
type JSONOutput struct {
	Summary  Summary      `json:"summary" yaml:"summary"`
	Results  []ResultView `json:"results" yaml:"results"`
	Duration int64        `json:"durationMs" yaml:"durationMs"`
	Time     string       `json:"time" yaml:"time"`
}

// Summary counts the outcomes of a run
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Completed      int `json:"completed" yaml:"completed"`
	Failed         int `json:"failed" yaml:"failed"`
	ScriptFailures int `json:"scriptFailures" yaml:"scriptFailures"`
}

// Summarize counts results by outcome.
func Summarize(results []*runner.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Failed() {
			s.Failed++
		} else {
			s.Completed++
		}
		for _, sr := range r.ScriptResults {
			if !sr.Success {
				s.ScriptFailures++
			}
		}
	}
	return s
}

// JSONFormatter accumulates results and writes them as one JSON document
type JSONFormatter struct {
	writer  io.Writer
	file    string
	results []*runner.Result
	views   []ResultView
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		views:  make([]ResultView, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// SetFile sets the request file path recorded for subsequent results.
func (f *JSONFormatter) SetFile(path string) {
	f.file = path
}

func (f *JSONFormatter) FormatResult(r *runner.Result) {
	f.results = append(f.results, r)
	f.views = append(f.views, NewResultView(f.file, r))
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	return FormatJSON(f.writer, JSONOutput{
		Summary:  Summarize(f.results),
		Results:  f.views,
		Duration: totalDuration.Milliseconds(),
		Time:     time.Now().Format(time.RFC3339),
	})
}

// FormatJSON writes v as indented JSON.
func FormatJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
