package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqfile/packages/core/collection"
	"github.com/abdul-hamid-achik/reqfile/packages/core/config"
	"github.com/abdul-hamid-achik/reqfile/packages/core/env"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [folder]",
	Short: "Initialize a new request collection",
	Long: `Initialize a new request collection in the given folder, or the current
directory.

This creates:
  - .reqfile.yaml                 - Configuration file
  - .reqfile.json                 - Collection settings
  - http-client.env.json          - Public environments
  - http-client.private.env.json  - Private environments (keep out of VCS)
  - example.http                  - Example request file

Examples:
  reqfile init
  reqfile init ./api --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleContent = `@apiVersion = v1

### Get health status
GET {{baseUrl}}/health
Accept: application/json

### Log in
POST {{baseUrl}}/{{apiVersion}}/login
Content-Type: application/json

{
  "user": "{{user}}",
  "password": "{{password}}"
}

> {% client.global.set("token", response.body.token); %}

### Who am I
# @timeout = 5000
GET {{baseUrl}}/{{apiVersion}}/me
Authorization: Bearer {{token}}

> {% console.log("status ok for", response.body.name); %}
`

func initCommand(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(".")
	if len(args) > 0 {
		dir, err = filepath.Abs(args[0])
	}
	if err != nil {
		return err
	}
	if err := appFs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, config.ConfigName+".yaml")
	collectionFile := filepath.Join(dir, collection.ConfigFile)
	publicEnvFile := filepath.Join(dir, env.DefaultPublicFile)
	privateEnvFile := filepath.Join(dir, env.DefaultPrivateFile)
	exampleFile := filepath.Join(dir, "example.http")

	if !forceInit {
		for _, f := range []string{configFile, collectionFile, publicEnvFile, privateEnvFile, exampleFile} {
			if ok, _ := afero.Exists(appFs, f); ok {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	projectConfig := config.DefaultConfig()
	projectConfig.DefaultEnvironment = "dev"
	projectConfig.Headers = map[string]string{"User-Agent": "reqfile/" + version}
	if err := projectConfig.Save(appFs, configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	files := []struct {
		path    string
		content any
	}{
		{collectionFile, collection.Settings{CollectionName: filepath.Base(dir)}},
		{publicEnvFile, map[string]map[string]string{
			"dev":     {"baseUrl": "http://localhost:3000", "user": "dev"},
			"staging": {"baseUrl": "https://staging.api.example.com", "user": "qa"},
			"prod":    {"baseUrl": "https://api.example.com"},
		}},
		{privateEnvFile, map[string]map[string]string{
			"dev": {"password": "change-me"},
		}},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.content, "", "  ")
		if err != nil {
			return err
		}
		if err := afero.WriteFile(appFs, f.path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", f.path)
	}

	if err := afero.WriteFile(appFs, exampleFile, []byte(exampleContent), 0o644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nreqfile collection initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'reqfile run example.http' to execute the example requests.\n")

	return nil
}
