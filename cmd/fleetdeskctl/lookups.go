package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// lookupKinds maps the CLI argument onto the API path for each lookup table.
var lookupKinds = map[string]string{
	"sites":          "/api/v2/sites",
	"categories":     "/api/v2/categories",
	"makes":          "/api/v2/makes",
	"models":         "/api/v2/models",
	"variants":       "/api/v2/variants",
	"asset-statuses": "/api/v2/asset-statuses",
	"issue-statuses": "/api/v2/issue-statuses",
	"action-types":   "/api/v2/action-types",
	"content-types":  "/api/v2/accepted-content-types",
}

var lookupsCmd = &cobra.Command{
	Use:   "lookups <kind>",
	Short: "List lookup catalog rows",
	Long: `List rows of one lookup table as JSON.

Kinds: sites, categories, makes, models, variants, asset-statuses,
issue-statuses, action-types, content-types.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookups,
}

func runLookups(cmd *cobra.Command, args []string) error {
	path, ok := lookupKinds[args[0]]
	if !ok {
		return fmt.Errorf("unknown lookup kind %q", args[0])
	}

	client := newClient()
	var resp map[string]any
	if err := client.getJSON(path, &resp); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp["items"])
}
