package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/fxpool/internal/config"
	"github.com/udisondev/fxpool/internal/data"
	"github.com/udisondev/fxpool/internal/db"
	"github.com/udisondev/fxpool/internal/effect"
)

// loadCatalog returns the effect definitions from the configured source and
// the catalog that supplies sprites. Sprites always come from a YAML
// catalog; postgres only stores definitions.
func loadCatalog(ctx context.Context, cfg config.FXDemo) ([]effect.Definition, *data.Catalog, error) {
	embedded, err := data.DefaultCatalog()
	if err != nil {
		return nil, nil, err
	}

	cat := embedded
	if cfg.CatalogSource == config.CatalogFile {
		cat, err = data.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
	}

	if !cfg.NeedsDatabase() {
		defs, err := cat.Definitions()
		if err != nil {
			return nil, nil, err
		}
		return defs, cat, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, nil, err
	}
	slog.Info("database migrations applied")

	repo := database.Catalog()
	if cfg.SeedCatalog {
		defs, err := cat.Definitions()
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Save(ctx, defs); err != nil {
			return nil, nil, fmt.Errorf("seeding catalog: %w", err)
		}
	}

	if cfg.CatalogSource != config.CatalogPostgres {
		defs, err := cat.Definitions()
		if err != nil {
			return nil, nil, err
		}
		return defs, cat, nil
	}

	defs, err := repo.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog from database: %w", err)
	}
	slog.Info("effect catalog loaded from database", "effects", len(defs))
	return defs, cat, nil
}

// resourceRefs lists every resource ref the scene library must know.
func resourceRefs(defs []effect.Definition, cat *data.Catalog) []string {
	seen := make(map[string]struct{}, len(defs))
	refs := make([]string, 0, len(defs))
	add := func(ref string) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	for _, ref := range cat.Resources() {
		add(ref)
	}
	for _, d := range defs {
		add(d.Resource)
	}
	return refs
}
