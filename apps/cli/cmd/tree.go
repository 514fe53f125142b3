package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/core/collection"
	"github.com/abdul-hamid-achik/reqfile/packages/output"
)

var (
	treeSectionsFlag bool
	treeOutputFlag   string
)

var treeCmd = &cobra.Command{
	Use:   "tree [folder]",
	Short: "Show the folders, files and environments of a collection",
	Long: `Show a collection as a tree: folders, .http files, the folders that
hold environment files and, with --sections, the sections of every file.

Examples:
  reqfile tree
  reqfile tree ./collection --sections
  reqfile tree -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: treeCommand,
}

func init() {
	treeCmd.Flags().BoolVarP(&treeSectionsFlag, "sections", "s", false, "Parse files and list their sections")
	treeCmd.Flags().StringVarP(&treeOutputFlag, "output", "o", "console", "Output format: console, json")
}

func treeCommand(cmd *cobra.Command, args []string) error {
	switch treeOutputFlag {
	case "console", "json":
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown output format %q (use console or json)", treeOutputFlag)}
	}

	folder, err := folderArg(args)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	opts := []collection.Option{collection.WithResolver(newResolver()), collection.WithLogger(logger)}
	if treeSectionsFlag {
		opts = append(opts, collection.WithSections(parserOptions()...))
	}
	tree, err := collection.Scan(appFs, folder, opts...)
	if err != nil {
		return &ExitError{Code: ExitParseError, Err: err}
	}

	if treeOutputFlag == "json" {
		return output.FormatJSON(cmd.OutOrStdout(), tree)
	}
	output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(cfg.GetNoColor()),
	).FormatTree(tree.Name, output.Flatten(tree, nil))
	return nil
}
