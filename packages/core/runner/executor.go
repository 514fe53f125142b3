package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/abdul-hamid-achik/reqfile/packages/core/vars"
	"github.com/abdul-hamid-achik/reqfile/packages/http"
	"github.com/abdul-hamid-achik/reqfile/packages/script"
)

var (
	// ErrNoRequest is returned when the selected line has no executable request.
	ErrNoRequest = errors.New("no request found at line")
	// ErrDispatch wraps transport failures.
	ErrDispatch = errors.New("dispatch request")
)

// ErrorStatusLine is the status line of a request that never got a response.
const ErrorStatusLine = "Error"

const (
	optionVerifySSL = "verify-ssl"
	optionTimeout   = "timeout"
)

// Dispatcher sends a fully resolved request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// ScriptRunner executes one post-response script.
type ScriptRunner interface {
	Run(ctx context.Context, p script.Params) script.Result
}

// StateHook observes every state transition of an execution.
type StateHook func(id uuid.UUID, state State)

type Executor struct {
	fs            afero.Fs
	dispatcher    Dispatcher
	scripts       ScriptRunner
	resolver      *env.Resolver
	logger        *slog.Logger
	scriptTimeout time.Duration
	onState       StateHook
}

type Option func(*Executor)

func WithFs(fs afero.Fs) Option {
	return func(e *Executor) {
		e.fs = fs
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(e *Executor) {
		e.dispatcher = d
	}
}

func WithScriptRunner(s ScriptRunner) Option {
	return func(e *Executor) {
		e.scripts = s
	}
}

func WithResolver(r *env.Resolver) Option {
	return func(e *Executor) {
		e.resolver = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithScriptTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.scriptTimeout = d
	}
}

func WithStateHook(hook StateHook) Option {
	return func(e *Executor) {
		e.onState = hook
	}
}

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger:        slog.New(slog.DiscardHandler),
		scriptTimeout: script.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.dispatcher == nil {
		e.dispatcher = http.NewClient()
	}
	if e.scripts == nil {
		e.scripts = script.NewSandbox()
	}
	if e.resolver == nil {
		e.resolver = env.NewResolver(e.fs, env.WithLogger(e.logger))
	}
	return e
}

// Params selects the request to execute and its scope.
type Params struct {
	File *parser.ParsedFile
	Line int
	// FilePath locates the request file. Its folder anchors environment
	// resolution and relative script paths.
	FilePath       string
	Environment    string
	CollectionPath string
	Session        *vars.Session
}

type Result struct {
	ID            uuid.UUID
	State         State
	Section       *parser.Section
	Request       *http.Request
	StatusLine    string
	StatusCode    int
	Headers       map[string]string
	Body          string
	Elapsed       time.Duration
	ScriptResults []script.Result
	Err           error
}

func (r *Result) Failed() bool {
	return r.State == StateFailed
}

// ScriptsPassed reports whether every post-response script succeeded.
func (r *Result) ScriptsPassed() bool {
	for _, s := range r.ScriptResults {
		if !s.Success {
			return false
		}
	}
	return true
}

// Execute runs the request whose section contains p.Line.
func (e *Executor) Execute(ctx context.Context, p Params) *Result {
	res := &Result{ID: uuid.New(), State: StateIdle}
	log := e.logger.With("id", res.ID.String(), "file", p.FilePath, "line", p.Line)

	e.transition(res, StateResolving)
	var section *parser.Section
	if p.File != nil {
		section = p.File.SectionAt(p.Line)
	}
	if !section.HasRequest() {
		return e.fail(log, res, fmt.Errorf("%w %d", ErrNoRequest, p.Line))
	}
	res.Section = section

	req, err := e.resolve(log, p, section)
	if err != nil {
		return e.fail(log, res, err)
	}
	res.Request = req

	e.transition(res, StateDispatching)
	log.Debug("dispatching request", "method", req.Method, "url", req.URL)
	start := time.Now()
	resp, err := e.dispatcher.Dispatch(ctx, req)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.StatusLine = ErrorStatusLine
		res.Body = err.Error()
		return e.fail(log, res, fmt.Errorf("%w: %w", ErrDispatch, err))
	}

	res.StatusLine = resp.StatusLine()
	res.StatusCode = resp.StatusCode
	res.Headers = resp.Headers
	res.Body = resp.BodyString()

	e.transition(res, StatePostProcessing)
	res.ScriptResults = e.runScripts(ctx, log, p, section, resp)

	e.transition(res, StateCompleted)
	log.Info("request completed", "status", res.StatusCode, "elapsed", res.Elapsed)
	return res
}

// RunFile executes every request of the file in document order. Sections
// whose name does not match nameFilter are skipped.
func (e *Executor) RunFile(ctx context.Context, p Params, nameFilter string) []*Result {
	var results []*Result
	for _, s := range p.File.Sections {
		if !s.HasRequest() || !matchesPattern(s.Name, nameFilter) {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}
		sp := p
		sp.Line = s.StartLine
		results = append(results, e.Execute(ctx, sp))
	}
	return results
}

func (e *Executor) transition(res *Result, state State) {
	res.State = state
	if e.onState != nil {
		e.onState(res.ID, state)
	}
}

func (e *Executor) fail(log *slog.Logger, res *Result, err error) *Result {
	res.Err = err
	e.transition(res, StateFailed)
	log.Warn("request failed", "error", err)
	return res
}

func (p Params) folder() string {
	if p.FilePath == "" {
		return p.CollectionPath
	}
	return filepath.Dir(p.FilePath)
}

func (p Params) root() string {
	if p.CollectionPath == "" {
		return p.folder()
	}
	return p.CollectionPath
}

func (e *Executor) resolve(log *slog.Logger, p Params, section *parser.Section) (*http.Request, error) {
	envVars := map[string]string{}
	if p.Environment != "" {
		envVars = e.resolver.VariableMap(p.Environment, p.folder(), p.root())
	}
	merged := vars.Merge(p.File, section, envVars, p.Session.Snapshot())

	url, err := vars.Substitute(section.URL, merged)
	if err != nil {
		return nil, fmt.Errorf("resolve url: %w", err)
	}

	headers := map[string]string{}
	if section.Headers != nil {
		headers, err = vars.SubstituteMap(section.Headers.Headers, merged)
		if err != nil {
			return nil, fmt.Errorf("resolve headers: %w", err)
		}
	}

	body, err := vars.Substitute(p.File.BodyText(section), merged)
	if err != nil {
		return nil, fmt.Errorf("resolve body: %w", err)
	}

	if missing := vars.Unresolved(url+"\n"+body, merged); len(missing) > 0 {
		log.Debug("unresolved variables", "names", missing)
	}

	req := &http.Request{
		Method:  section.Verb,
		URL:     url,
		Headers: http.NormalizeBasicAuth(headers),
		Body:    body,
	}
	applyOptions(log, req, vars.Options(p.File, section))
	return req, nil
}

func applyOptions(log *slog.Logger, req *http.Request, opts map[string]string) {
	if v, ok := opts[optionVerifySSL]; ok && strings.EqualFold(v, "false") {
		req.SkipTLSVerify = true
	}
	if v, ok := opts[optionTimeout]; ok {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			log.Warn("ignoring invalid timeout option", "value", v)
			return
		}
		req.Timeout = time.Duration(ms) * time.Millisecond
	}
}

func (e *Executor) runScripts(ctx context.Context, log *slog.Logger, p Params, section *parser.Section, resp *http.Response) []script.Result {
	results := make([]script.Result, 0, len(section.PostScripts))
	for i, ps := range section.PostScripts {
		code, err := e.scriptCode(p, ps)
		if err != nil {
			log.Warn("post-response script unavailable", "index", i, "error", err)
			results = append(results, script.Result{Error: err.Error(), Logs: []string{}})
			continue
		}

		r := e.scripts.Run(ctx, script.Params{
			Code:                code,
			Timeout:             e.scriptTimeout,
			CollectionPath:      p.CollectionPath,
			ResponseBody:        resp.BodyString(),
			ResponseContentType: resp.Header("content-type"),
		})
		if !r.Success {
			log.Warn("post-response script failed", "index", i, "error", r.Error)
		}
		if p.Session != nil && len(r.GlobalVariableChanges) > 0 {
			p.Session.Apply(r.GlobalVariableChanges)
		}
		results = append(results, r)
	}
	return results
}

func (e *Executor) scriptCode(p Params, ps *parser.PostScript) (string, error) {
	source := p.File.ScriptSource(ps)
	if ps.Kind == parser.PostScriptInline {
		return source, nil
	}
	if source == "" {
		return "", errors.New("post-response script has no file path")
	}

	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.folder(), path)
	}
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return "", fmt.Errorf("read script file %s: %w", path, err)
	}
	return normalizeScript(string(data)), nil
}

// normalizeScript strips an optional {% %} wrapper from script file content.
func normalizeScript(body string) string {
	s := strings.TrimSpace(body)
	if strings.HasPrefix(s, "{%") && strings.HasSuffix(s, "%}") {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}
