package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
)

// maskedValue replaces private variable values unless verbose output is on.
const maskedValue = "********"

// truncate shortens a value for single line display
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(r *runner.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	name := DisplayName(r.Section)
	elapsed := cyan(fmt.Sprintf("(%dms)", r.Elapsed.Milliseconds()))

	switch {
	case r.Failed():
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), name, red(fmt.Sprintf("(%v)", r.Err)))
	case !r.ScriptsPassed():
		fmt.Fprintf(f.writer, "  %s %s %s %s\n", yellow("!"), name, r.StatusLine, elapsed)
	default:
		fmt.Fprintf(f.writer, "  %s %s %s %s\n", green("✓"), name, r.StatusLine, elapsed)
	}

	if f.verbose && r.Request != nil {
		fmt.Fprintf(f.writer, "    %s %s\n", bold(r.Request.Method), r.Request.URL)
		for _, k := range sortedKeys(r.Request.Headers) {
			fmt.Fprintf(f.writer, "    > %s: %s\n", k, r.Request.Headers[k])
		}
		for _, k := range sortedKeys(r.Headers) {
			fmt.Fprintf(f.writer, "    < %s: %s\n", k, r.Headers[k])
		}
		if r.Body != "" {
			for _, line := range strings.Split(PrettyBody(r.Body), "\n") {
				fmt.Fprintf(f.writer, "    %s\n", line)
			}
		}
	}

	for i, s := range r.ScriptResults {
		if !s.Success {
			fmt.Fprintf(f.writer, "    %s script %d: %s\n", red("→"), i+1, s.Error)
		}
		if f.verbose || !s.Success {
			for _, line := range s.Logs {
				fmt.Fprintf(f.writer, "      %s\n", line)
			}
		}
		if f.verbose {
			for _, k := range sortedKeys(s.GlobalVariableChanges) {
				fmt.Fprintf(f.writer, "      %s = %s\n", k, truncate(s.GlobalVariableChanges[k], 100))
			}
		}
	}
}

// FormatSummary writes the totals of a run.
func (f *ConsoleFormatter) FormatSummary(results []*runner.Result, total time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	s := Summarize(results)
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Requests: ")
	if s.Completed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d completed", s.Completed)))
	}
	if s.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.ScriptFailures > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d script failures", s.ScriptFailures)))
	}
	fmt.Fprintf(f.writer, "%d total\n", s.Total)
	fmt.Fprintf(f.writer, "Time:     %dms\n", total.Milliseconds())
}

// FormatFileStart writes the heading printed before a file's results.
func (f *ConsoleFormatter) FormatFileStart(path string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+path))
}

// FormatFile lists the preamble and sections of a parsed file.
func (f *ConsoleFormatter) FormatFile(path string, file *parser.ParsedFile) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(path))
	if file.Preamble != nil {
		f.formatAssignments("  ", "@", file.Preamble.Variables)
		f.formatAssignments("  ", "#@", file.Preamble.Options)
	}

	for _, s := range file.Sections {
		lines := faint(fmt.Sprintf("[%d-%d)", s.StartLine, s.EndLine))
		if s.IsDivider {
			fmt.Fprintf(f.writer, "  %s %s %s\n", lines, faint("---"), s.Name)
			continue
		}
		fmt.Fprintf(f.writer, "  %s %-4s %s %s\n", lines, cyan(FormatVerb(s.Verb)), DisplayName(s), faint(s.URL))
		if !f.verbose {
			continue
		}
		if s.Preamble != nil {
			f.formatAssignments("    ", "@", s.Preamble.Variables)
			f.formatAssignments("    ", "#@", s.Preamble.Options)
		}
		if s.Headers != nil {
			for _, k := range sortedKeys(s.Headers.Headers) {
				fmt.Fprintf(f.writer, "    %s: %s\n", k, s.Headers.Headers[k])
			}
		}
		if body := file.BodyText(s); body != "" {
			fmt.Fprintf(f.writer, "    body: %s\n", truncate(body, 100))
		}
		for _, ps := range s.PostScripts {
			fmt.Fprintf(f.writer, "    > %s: %s\n", ps.Kind, truncate(file.ScriptSource(ps), 100))
		}
	}
}

func (f *ConsoleFormatter) formatAssignments(indent, prefix string, m map[string]string) {
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(f.writer, "%s%s%s = %s\n", indent, prefix, k, m[k])
	}
}

// FormatEnvironments lists environment names with their source folder.
func (f *ConsoleFormatter) FormatEnvironments(envs []env.AvailableEnvironment) {
	faint := color.New(color.Faint).SprintFunc()
	if len(envs) == 0 {
		fmt.Fprintf(f.writer, "No environments found\n")
		return
	}
	for _, e := range envs {
		marker := " "
		if e.IsFromCurrentFolder {
			marker = "*"
		}
		fmt.Fprintf(f.writer, "%s %s %s\n", marker, e.Name, faint("("+e.Source+")"))
	}
}

// FormatVariables lists resolved environment variables and their provenance.
// Private values are masked unless verbose output is on.
func (f *ConsoleFormatter) FormatVariables(variables []env.EnvironmentVariable) {
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(variables) == 0 {
		fmt.Fprintf(f.writer, "No variables found\n")
		return
	}
	for _, v := range variables {
		value := v.Value
		if v.IsPrivate && !f.verbose {
			value = maskedValue
		}
		fmt.Fprintf(f.writer, "%s = %s %s\n", v.Name, truncate(value, 100), faint("("+v.Source+")"))
		if v.IsOverridden {
			parent := v.ParentValue
			if v.ParentIsPrivate && !f.verbose {
				parent = maskedValue
			}
			fmt.Fprintf(f.writer, "  %s %s %s\n", yellow("overrides"), truncate(parent, 100), faint("("+v.ParentSource+")"))
		}
	}
}

// FormatTree writes flattened collection rows.
func (f *ConsoleFormatter) FormatTree(name string, rows []Row) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(name))
	for _, r := range rows {
		indent := strings.Repeat("  ", r.Depth+1)
		switch r.Kind {
		case RowEnvironments:
			fmt.Fprintf(f.writer, "%s%s\n", indent, faint(r.Title))
		case RowItem:
			title := r.Title
			if r.Node.IsFolder() {
				title += "/"
			}
			fmt.Fprintf(f.writer, "%s%s\n", indent, title)
		case RowSection:
			if r.Section.IsDivider {
				fmt.Fprintf(f.writer, "%s  %s %s\n", indent, faint("---"), r.Title)
				continue
			}
			fmt.Fprintf(f.writer, "%s  %-4s %s\n", indent, cyan(FormatVerb(r.Section.Verb)), DisplayName(r.Section))
		case RowSpacer:
			fmt.Fprintf(f.writer, "\n")
		}
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("reqfile"), version)
}
