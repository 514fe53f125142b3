package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
	"github.com/abdul-hamid-achik/reqfile/packages/core/vars"
	"github.com/abdul-hamid-achik/reqfile/packages/history"
	"github.com/abdul-hamid-achik/reqfile/packages/http"
	"github.com/abdul-hamid-achik/reqfile/packages/output"
	"github.com/abdul-hamid-achik/reqfile/packages/script"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Execute requests from .http files",
	Long: `Execute the requests defined in .http files.

Without --line every request of every file runs in document order.
Variables set by post-response scripts (client.global.set) are visible to
later requests of the same run.

Examples:
  reqfile run api.http
  reqfile run api.http --line 12 --env dev
  reqfile run ./collection --name "get*"
  reqfile run api.http --query data.id
  reqfile run api.http -o http
  reqfile run api.http --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFlag        string
	envFileFlag    string
	nameFlag       string
	lineFlag       int
	collectionFlag string
	outputFlag     string
	queryFlag      string
	historyFlag    string
	timeoutFlag    time.Duration
	insecureFlag   bool
	watchFlag      bool
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", "", "Environment to use (default: defaultEnvironment from config)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", "", "Path to .env file whose values seed the runtime globals")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only sections matching name pattern (* wildcards)")
	runCmd.Flags().IntVarP(&lineFlag, "line", "l", 0, "Run only the request whose section contains this line")
	runCmd.Flags().StringVarP(&collectionFlag, "collection", "c", "", "Collection root for every file (default: nearest folder with .reqfile.json above each file)")

	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json, http")
	runCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Print only this JSON path of each response body")
	runCmd.Flags().StringVar(&historyFlag, "history", "", "Record executions in this SQLite file (default: historyFile from config)")

	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Request timeout (e.g., 30s, 1m) (default: timeout from config)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run requests")
}

// runState holds everything one invocation of run shares across files and
// watch iterations.
type runState struct {
	out         io.Writer
	environment string
	executor    *runner.Executor
	resolver    *env.Resolver
	sessions    *vars.Sessions
	seed        map[string]string
	store       *history.Store
}

func runCommand(cmd *cobra.Command, args []string) error {
	switch outputFlag {
	case "console", "json", "http":
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown output format %q (use console, json or http)", outputFlag)}
	}
	if lineFlag < 0 {
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("invalid line %d", lineFlag)}
	}

	files, err := collectFiles(args)
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}
	if len(files) == 0 {
		return &ExitError{Code: ExitUsageError, Err: errors.New("no .http files found")}
	}
	if lineFlag > 0 && len(files) > 1 {
		return &ExitError{Code: ExitUsageError, Err: errors.New("--line needs exactly one file")}
	}

	state, err := newRunState(cmd)
	if err != nil {
		return err
	}
	defer state.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := state.runAll(ctx, files)
	if !watchFlag {
		if code != ExitSuccess {
			return &ExitError{Code: code, Err: errRequestsFailed}
		}
		return nil
	}
	return state.watch(ctx, args, files)
}

func newRunState(cmd *cobra.Command) (*runState, error) {
	environment := envFlag
	if environment == "" {
		environment = cfg.DefaultEnvironment
	}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeoutFlag > 0 {
		timeout = timeoutFlag
	}

	client := http.NewClient(
		http.WithTimeout(timeout),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL() && !insecureFlag),
		http.WithProxy(cfg.Proxy),
		http.WithDefaultHeaders(cfg.Headers),
	)

	resolver := newResolver()
	executor := runner.NewExecutor(
		runner.WithFs(appFs),
		runner.WithDispatcher(client),
		runner.WithScriptRunner(script.NewSandbox()),
		runner.WithResolver(resolver),
		runner.WithLogger(logger),
		runner.WithScriptTimeout(time.Duration(cfg.ScriptTimeout)*time.Millisecond),
		runner.WithStateHook(func(id uuid.UUID, s runner.State) {
			logger.Debug("execution state", "id", id.String(), "state", s.String())
		}),
	)

	state := &runState{
		out:         cmd.OutOrStdout(),
		environment: environment,
		executor:    executor,
		resolver:    resolver,
		sessions:    vars.NewSessions(),
	}

	if envFileFlag != "" {
		values, err := env.LoadDotEnv(appFs, envFileFlag)
		if err != nil {
			return nil, &ExitError{Code: ExitConfigError, Err: err}
		}
		state.seed = values
	}

	historyPath := historyFlag
	if historyPath == "" {
		historyPath = cfg.HistoryFile
	}
	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			return nil, &ExitError{Code: ExitConfigError, Err: err}
		}
		state.store = store
	}

	return state, nil
}

func (s *runState) close() {
	s.sessions.CloseAll()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("failed to close history", "error", err)
		}
	}
}

// session returns the globals of the collection at root. A new session
// starts from the --env-file values.
func (s *runState) session(root string) *vars.Session {
	session := s.sessions.Open(root)
	if session.Len() == 0 && len(s.seed) > 0 {
		session.Apply(s.seed)
	}
	return session
}

func (s *runState) newConsole() *output.ConsoleFormatter {
	return output.NewConsoleFormatter(
		output.WithWriter(s.out),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
	)
}

// runAll executes every file once and returns the exit code of the run.
func (s *runState) runAll(ctx context.Context, files []string) int {
	start := time.Now()
	console := s.newConsole()
	jsonFormatter := output.NewJSONFormatter(output.JSONWithWriter(s.out))

	code := ExitSuccess
	var all []*runner.Result
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		parsed, err := parser.ParseFile(appFs, file, parserOptions()...)
		if err != nil {
			console.FormatError(err)
			code = max(code, ExitParseError)
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		root, err := collectionRoot(abs, collectionFlag)
		if err != nil {
			console.FormatError(err)
			code = max(code, ExitUsageError)
			continue
		}

		p := runner.Params{
			File:           parsed,
			FilePath:       abs,
			Environment:    s.environment,
			CollectionPath: root,
			Session:        s.session(root),
		}
		var results []*runner.Result
		if lineFlag > 0 {
			p.Line = lineFlag
			results = []*runner.Result{s.executor.Execute(ctx, p)}
		} else {
			results = s.executor.RunFile(ctx, p, nameFlag)
		}

		s.record(ctx, abs, results)
		all = append(all, results...)

		switch {
		case queryFlag != "":
			if !s.printQuery(console, results) {
				code = max(code, ExitRequestFailure)
			}
		case outputFlag == "json":
			jsonFormatter.SetFile(file)
			for _, r := range results {
				jsonFormatter.FormatResult(r)
			}
		case outputFlag == "http":
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(s.out)
				}
				if err := output.FormatHTTP(s.out, r); err != nil {
					console.FormatError(err)
				}
			}
		default:
			if len(results) > 0 {
				console.FormatFileStart(file)
			}
			for _, r := range results {
				console.FormatResult(r)
			}
		}
	}

	elapsed := time.Since(start)
	switch {
	case queryFlag != "":
	case outputFlag == "json":
		if err := jsonFormatter.Flush(elapsed); err != nil {
			console.FormatError(fmt.Errorf("error writing output: %w", err))
		}
	case outputFlag == "console":
		console.FormatSummary(all, elapsed)
	}

	for _, r := range all {
		code = max(code, resultExitCode(r))
	}
	return code
}

// printQuery prints the queried value of every result. It reports false
// when any body did not match.
func (s *runState) printQuery(console *output.ConsoleFormatter, results []*runner.Result) bool {
	ok := true
	for _, r := range results {
		if r.Failed() {
			console.FormatError(r.Err)
			continue
		}
		v, err := output.Query(r.Body, queryFlag)
		if err != nil {
			console.FormatError(fmt.Errorf("%s: %w", output.DisplayName(r.Section), err))
			ok = false
			continue
		}
		fmt.Fprintln(s.out, v)
	}
	return ok
}

func (s *runState) record(ctx context.Context, file string, results []*runner.Result) {
	if s.store == nil {
		return
	}
	for _, r := range results {
		if _, err := s.store.Record(ctx, history.NewEntry(file, s.environment, r)); err != nil {
			logger.Warn("failed to record execution", "id", r.ID.String(), "error", err)
		}
	}
}

func resultExitCode(r *runner.Result) int {
	switch {
	case !r.Failed():
		if r.ScriptsPassed() {
			return ExitSuccess
		}
		return ExitRequestFailure
	case errors.Is(r.Err, runner.ErrNoRequest):
		return ExitParseError
	case errors.Is(r.Err, runner.ErrDispatch):
		return ExitNetworkError
	default:
		return ExitRequestFailure
	}
}

// watch re-runs the files whenever a request or environment file changes.
func (s *runState) watch(ctx context.Context, args, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	console := s.newConsole()
	watchedDirs := make(map[string]bool)
	addDir := func(dir string) {
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			console.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
		}
		watchedDirs[dir] = true
	}
	for _, file := range files {
		addDir(filepath.Dir(file))
		if root, err := collectionRoot(file, collectionFlag); err == nil {
			addDir(root)
		}
	}

	fmt.Fprintf(s.out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var (
		debounce <-chan time.Time
		changed  string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !isRequestFile(name) && !s.resolver.IsEnvFile(name) {
				continue
			}
			changed = event.Name
			debounce = time.After(WatchDebounceDelay)

		case <-debounce:
			debounce = nil
			fmt.Fprintf(s.out, "\n\nFile changed: %s\nRe-running requests...\n\n", changed)

			if refreshed, err := collectFiles(args); err == nil {
				files = refreshed
				for _, file := range files {
					addDir(filepath.Dir(file))
				}
			} else {
				console.FormatError(err)
			}
			s.runAll(ctx, files)

			fmt.Fprintf(s.out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			console.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
