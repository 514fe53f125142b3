package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/history"
	"github.com/abdul-hamid-achik/reqfile/packages/output"
)

var (
	historyFileFlag   string
	historyLimitFlag  int
	historyOutputFlag string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed requests",
	Long: `Show requests recorded by 'reqfile run' in the history database set with
--history or the historyFile config key.

Examples:
  reqfile history
  reqfile history --limit 5 -o json`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyFileFlag, "history", "", "History SQLite file (default: historyFile from config)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyOutputFlag, "output", "o", "console", "Output format: console, json")
}

func historyCommand(cmd *cobra.Command, _ []string) error {
	path := historyFileFlag
	if path == "" {
		path = cfg.HistoryFile
	}
	if path == "" {
		return &ExitError{Code: ExitConfigError, Err: errors.New("no history file configured (use --history or historyFile)")}
	}

	store, err := history.Open(path)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}

	switch historyOutputFlag {
	case "json":
		return output.FormatJSON(cmd.OutOrStdout(), entries)
	case "console":
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown output format %q (use console or json)", historyOutputFlag)}
	}

	if cfg.GetNoColor() {
		color.NoColor = true
	}
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(w, "No executions recorded\n")
		return nil
	}
	for _, e := range entries {
		status := e.StatusLine
		if e.Failure != "" {
			status = red(e.Failure)
		}
		fmt.Fprintf(w, "%s %-4s %s %s %s\n",
			faint(e.ExecutedAt.Local().Format(time.DateTime)),
			output.FormatVerb(e.Method), e.URL, status, faint(fmt.Sprintf("(%dms)", e.ElapsedMs)))
		if verboseFlag {
			fmt.Fprintf(w, "    %s:%d %s\n", e.File, e.Line, faint(e.ID.String()))
		}
	}
	return nil
}
