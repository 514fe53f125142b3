package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
	"github.com/abdul-hamid-achik/reqfile/packages/output"
)

var parseOutputFlag string

var parseCmd = &cobra.Command{
	Use:   "parse <file|directory>...",
	Short: "Show the sections, variables and scripts of .http files",
	Long: `Parse .http files without executing them.

Parsing never fails: text that is not a request becomes a divider
section. Use this to check how a file is understood.

Examples:
  reqfile parse api.http
  reqfile parse api.http -v
  reqfile parse ./collection -o yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: parseCommand,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutputFlag, "output", "o", "console", "Output format: console, json, yaml")
}

func parseCommand(cmd *cobra.Command, args []string) error {
	switch parseOutputFlag {
	case "console", "json", "yaml":
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown output format %q (use console, json or yaml)", parseOutputFlag)}
	}

	files, err := collectFiles(args)
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}
	if len(files) == 0 {
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("no .http files found")}
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
	)

	views := make([]output.FileView, 0, len(files))
	for _, file := range files {
		f, err := parser.ParseFile(appFs, file, parserOptions()...)
		if err != nil {
			return &ExitError{Code: ExitParseError, Err: err}
		}
		if parseOutputFlag == "console" {
			console.FormatFile(file, f)
			continue
		}
		views = append(views, output.NewFileView(file, f))
	}

	switch parseOutputFlag {
	case "json":
		return output.FormatJSON(cmd.OutOrStdout(), views)
	case "yaml":
		return output.FormatYAML(cmd.OutOrStdout(), views)
	}
	return nil
}
