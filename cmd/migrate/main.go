package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		logger.Error("usage: migrate <up|down|version|import <db.json>>")
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	if args[0] == "import" {
		if len(args) < 2 {
			logger.Error("usage: migrate import <db.json>")
			os.Exit(1)
		}
		decimal.MarshalJSONWithoutQuotes = true
		if err := importDocument(context.Background(), postgresURL, args[1]); err != nil {
			logger.Error("import failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("document imported", slog.String("path", args[1]))
		return
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, postgresURL)
	if err != nil {
		logger.Error("failed to create migrate instance", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	command := args[0]

	switch command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending migrations")
			return
		}
		if err != nil {
			logger.Error("migration up failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied successfully")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to rollback")
			return
		}
		if err != nil {
			logger.Error("migration down failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migration rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied yet")
			return
		}
		if err != nil {
			logger.Error("failed to get version", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("current migration version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))

	default:
		logger.Error("unknown command", slog.String("command", command))
		os.Exit(1)
	}
}

// importDocument replaces the Postgres document with the contents of a JSON
// file store, for moving an existing db.json into Postgres.
func importDocument(ctx context.Context, postgresURL, path string) error {
	src, err := store.NewFileStore(path).Read(ctx)
	if err != nil {
		return err
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	dst := store.NewPostgresStore(db, store.DefaultDocumentID)
	current, err := dst.Read(ctx)
	if err != nil {
		return err
	}

	src.Version = current.Version
	return dst.Write(ctx, src)
}
