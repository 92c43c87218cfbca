package main

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

var (
	seedDBType string
	seedDBDSN  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed canonical lookup rows into a database",
	Long: `Insert the canonical issue statuses, action types, and attachment
content types directly into the database. Existing codes are left untouched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDBType, "db-type", "postgres", "Database type (postgres, mysql, or sqlite)")
	seedCmd.Flags().StringVar(&seedDBDSN, "db-dsn", "", "Database connection string")
}

func runSeed(cmd *cobra.Command, args []string) error {
	var db *gorm.DB
	var err error
	switch seedDBType {
	case "postgres":
		db, err = gorm.Open(postgres.Open(seedDBDSN), &gorm.Config{TranslateError: true})
	case "mysql":
		db, err = gorm.Open(mysql.Open(seedDBDSN), &gorm.Config{TranslateError: true})
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(seedDBDSN), &gorm.Config{TranslateError: true})
	default:
		return fmt.Errorf("unsupported database type: %q", seedDBType)
	}
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if err := catalog.NewStore(db).AutoMigrate(); err != nil {
		return err
	}
	if err := catalog.SeedDefaults(db); err != nil {
		return err
	}

	fmt.Println("seeded canonical lookup rows")
	return nil
}
