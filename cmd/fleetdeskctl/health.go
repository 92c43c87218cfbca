package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server and database health",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()

	var resp map[string]any
	if err := client.getJSON("/healthz", &resp); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}

	fmt.Printf("ok: %v\n", resp["ok"])
	if n, ok := resp["site_count"]; ok {
		fmt.Printf("sites: %v\n", n)
	}
	return nil
}
