package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/reqfile/packages/core/collection"
	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
	"github.com/abdul-hamid-achik/reqfile/packages/core/parser"
)

// collectFiles expands the arguments into request files. Directories are
// scanned as collections.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := appFs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			tree, err := collection.Scan(appFs, arg, collection.WithResolver(newResolver()), collection.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			files = append(files, tree.Files()...)
		} else if isRequestFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

func isRequestFile(path string) bool {
	return filepath.Ext(path) == ".http"
}

func parserOptions() []parser.Option {
	if cfg.SectionMarker == "" {
		return nil
	}
	return []parser.Option{parser.WithSectionMarker(cfg.SectionMarker)}
}

func newResolver() *env.Resolver {
	opts := []env.ResolverOption{env.WithLogger(logger)}
	if cfg.PublicEnvFile != "" || cfg.PrivateEnvFile != "" {
		opts = append(opts, env.WithFileNames(cfg.PublicEnvFile, cfg.PrivateEnvFile))
	}
	return env.NewResolver(appFs, opts...)
}

// collectionRoot returns the collection folder for a request file or
// folder: the explicit flag value, else the nearest folder holding a
// collection config, else the folder itself.
func collectionRoot(path, flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Abs(flagValue)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir := abs
	if info, err := appFs.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	return collection.FindRoot(appFs, dir), nil
}

// folderArg returns the folder named by the optional first argument, or
// the working directory.
func folderArg(args []string) (string, error) {
	if len(args) == 0 {
		return filepath.Abs(".")
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return "", err
	}
	if ok, _ := afero.IsDir(appFs, abs); !ok {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}
