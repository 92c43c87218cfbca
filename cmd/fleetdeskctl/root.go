package main

import (
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "fleetdeskctl",
	Short: "CLI for the fleetdesk maintenance-ticketing server",
	Long: `fleetdeskctl is a small operations CLI for a running fleetdesk server.

It can check server health, inspect the lookup catalog, and seed the
canonical lookup rows into a database.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Fleetdesk server URL")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(lookupsCmd)
	rootCmd.AddCommand(seedCmd)
}
