package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/output"
)

var (
	envCollectionFlag string
	envOutputFlag     string
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect environments visible from a folder",
}

var envListCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List environment names visible from a folder",
	Long: `List the environments defined by environment files in the folder and
its ancestors up to the collection root. Names marked * are defined in the
folder itself.

Examples:
  reqfile env list
  reqfile env list ./users -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: envListCommand,
}

var envVarsCmd = &cobra.Command{
	Use:   "vars <environment> [folder]",
	Short: "Show the resolved variables of an environment",
	Long: `Show the variables of an environment as seen from a folder, with the
folder each value comes from and the value it overrides. Private values are
masked unless --verbose is set.

Examples:
  reqfile env vars dev
  reqfile env vars dev ./users -v`,
	Args: cobra.RangeArgs(1, 2),
	RunE: envVarsCommand,
}

func init() {
	envCmd.PersistentFlags().StringVarP(&envCollectionFlag, "collection", "c", "", "Collection root (default: nearest folder with .reqfile.json)")
	envCmd.PersistentFlags().StringVarP(&envOutputFlag, "output", "o", "console", "Output format: console, json")
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envVarsCmd)
}

func envScope(args []string) (folder, root string, err error) {
	folder, err = folderArg(args)
	if err != nil {
		return "", "", &ExitError{Code: ExitUsageError, Err: err}
	}
	root, err = collectionRoot(folder, envCollectionFlag)
	if err != nil {
		return "", "", &ExitError{Code: ExitUsageError, Err: err}
	}
	return folder, root, nil
}

func envConsole(cmd *cobra.Command) (*output.ConsoleFormatter, error) {
	switch envOutputFlag {
	case "console", "json":
	default:
		return nil, &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown output format %q (use console or json)", envOutputFlag)}
	}
	return output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
	), nil
}

func envListCommand(cmd *cobra.Command, args []string) error {
	console, err := envConsole(cmd)
	if err != nil {
		return err
	}
	folder, root, err := envScope(args)
	if err != nil {
		return err
	}

	envs := newResolver().Environments(folder, root)
	if envOutputFlag == "json" {
		return output.FormatJSON(cmd.OutOrStdout(), envs)
	}
	console.FormatEnvironments(envs)
	return nil
}

func envVarsCommand(cmd *cobra.Command, args []string) error {
	console, err := envConsole(cmd)
	if err != nil {
		return err
	}
	folder, root, err := envScope(args[1:])
	if err != nil {
		return err
	}

	variables := newResolver().Variables(args[0], folder, root)
	if envOutputFlag == "json" {
		return output.FormatJSON(cmd.OutOrStdout(), variables)
	}
	console.FormatVariables(variables)
	return nil
}
