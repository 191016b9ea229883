package main

import (
	"context"
	"fmt"

	"github.com/edoardob90/runits/internal/audit"
	"github.com/edoardob90/runits/internal/catalog"
	"github.com/edoardob90/runits/internal/conversion"
	"github.com/edoardob90/runits/internal/customunit"
	"github.com/edoardob90/runits/internal/infrastructure/config"
	"github.com/edoardob90/runits/internal/infrastructure/database"
	"github.com/edoardob90/runits/internal/infrastructure/logging"
	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/system"
)

// app is the assembled core shared by every command.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	db      *database.DB
	catalog *catalog.Service
	engine  *conversion.Engine
}

// bootstrap loads configuration, opens the custom unit database, publishes
// the registry and selects the configured unit system.
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	policy, err := registry.ParsePolicy(cfg.Registry.Policy)
	if err != nil {
		return nil, err
	}

	db, err := database.OpenAndMigrate(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	systems := system.NewManager()
	cat := catalog.New(registry.NewStore(nil), systems, catalog.Options{
		Files:      cfg.Registry.DefinitionFiles,
		Policy:     policy,
		Repository: customunit.NewSQLiteRepository(db.DB),
		Audit:      audit.NewSQLiteRepository(db.DB),
	})
	cat.SetLogger(log)

	if err := cat.Reload(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("loading unit registry: %w", err)
	}
	if err := systems.Switch(cfg.Registry.System); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("selecting unit system: %w", err)
	}

	engine := conversion.New(cat.Parser(), systems)
	engine.SetLogger(log)

	return &app{cfg: cfg, log: log, db: db, catalog: cat, engine: engine}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
