package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/core/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
	noColorFlag   bool
	verboseFlag   bool
)

// appFs is the file system every command reads and writes.
var appFs = afero.NewOsFs()

var (
	cfg    = config.DefaultConfig()
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "reqfile",
	Short: "Run requests from plain .http files",
	Long: `reqfile parses .http request files, resolves variables from
folder-scoped environment files and executes the requests.

A collection is a folder of .http files. http-client.env.json and
http-client.private.env.json files at any level define environments;
the closest folder wins.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default: search .reqfile.{yaml,json})")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// loadSettings reads the config file and applies the persistent flags.
func loadSettings(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(appFs, configFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevelFlag
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormatFlag
	}
	if flags.Changed("no-color") {
		loaded.NoColor = config.BoolPtr(noColorFlag)
	}

	l, err := newLogger(cmd.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	cfg = loaded
	logger = l
	return nil
}
