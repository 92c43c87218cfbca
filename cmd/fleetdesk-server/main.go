// Package main provides the fleetdesk server entry point: the maintenance
// ticketing API over assets, issues, and attachments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang/glog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/assets"
	"github.com/fleetdesk/fleetdesk/pkg/attachments"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
	"github.com/fleetdesk/fleetdesk/pkg/issues"
	"github.com/fleetdesk/fleetdesk/pkg/server"
)

func main() {
	var (
		listenAddr     string
		databaseType   string
		databaseDSN    string
		attachmentRoot string
		seed           bool
	)

	flag.StringVar(&listenAddr, "listen", envOrDefault("FLEETDESK_LISTEN", ":8080"), "Address to listen on")
	flag.StringVar(&databaseType, "db-type", envOrDefault("FLEETDESK_DB_TYPE", "postgres"), "Database type (postgres, mysql, or sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", os.Getenv("FLEETDESK_DB_DSN"), "Database connection string")
	flag.StringVar(&attachmentRoot, "attachment-root", envOrDefault("FLEETDESK_ATTACHMENT_ROOT", "data/attachments"), "Root directory for attachment files")
	flag.BoolVar(&seed, "seed", false, "Seed canonical lookup rows on startup")
	flag.Parse()

	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting fleetdesk server",
		"listen", listenAddr,
		"dbType", databaseType,
		"attachmentRoot", attachmentRoot,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	catalogStore := catalog.NewStore(db)
	assetStore := assets.NewStore(db)

	blobs, err := attachments.NewBlobStore(attachmentRoot)
	if err != nil {
		glog.Fatalf("Failed to create attachment store: %v", err)
	}
	attachmentStore := attachments.NewStore(db, blobs, catalogStore)

	for _, m := range []interface{ AutoMigrate() error }{catalogStore, assetStore, attachmentStore} {
		if err := m.AutoMigrate(); err != nil {
			glog.Fatalf("Failed to migrate schema: %v", err)
		}
	}

	if seed {
		if err := catalog.SeedDefaults(db); err != nil {
			glog.Fatalf("Failed to seed catalog: %v", err)
		}
		logger.Info("seeded canonical lookup rows")
	}

	registry, err := catalog.LoadRegistry(catalogStore)
	if err != nil {
		glog.Fatalf("Failed to load catalog registry: %v", err)
	}

	issueStore := issues.NewStore(db, registry)
	if err := issueStore.AutoMigrate(); err != nil {
		glog.Fatalf("Failed to migrate issue tables: %v", err)
	}

	router := server.New(db, server.Stores{
		Catalog:     catalogStore,
		Registry:    registry,
		Assets:      assetStore,
		Issues:      issueStore,
		Attachments: attachmentStore,
	}, logger)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	logger.Info("fleetdesk server ready", "listen", listenAddr)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
}

// setupDatabase opens the gorm handle for the configured backend. sqlite is
// intended for development; an empty DSN uses a local file.
func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	switch dbType {
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("db-dsn is required for postgres")
		}
		return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("db-dsn is required for mysql")
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	case "sqlite":
		if dsn == "" {
			dsn = "fleetdesk.db"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	default:
		return nil, fmt.Errorf("unsupported database type: %q", dbType)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
