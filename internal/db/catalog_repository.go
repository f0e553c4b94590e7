package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/fxpool/internal/effect"
)

// CatalogRepository stores effect definitions in effect_definitions.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Load returns every stored definition ordered by name.
func (r *CatalogRepository) Load(ctx context.Context) ([]effect.Definition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, resource, lifetime_ms, category
		FROM effect_definitions
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying effect definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]effect.Definition, 0, 32)
	for rows.Next() {
		var (
			name, resource, category string
			lifetimeMs               int64
		)
		if err := rows.Scan(&name, &resource, &lifetimeMs, &category); err != nil {
			return nil, fmt.Errorf("scanning effect definition row: %w", err)
		}

		cat, err := effect.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("effect %q: %w", name, err)
		}
		defs = append(defs, effect.Definition{
			Name:     name,
			Resource: resource,
			Lifetime: time.Duration(lifetimeMs) * time.Millisecond,
			Category: cat,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating effect definition rows: %w", err)
	}

	return defs, nil
}

// Save upserts defs in one transaction. Invalid definitions abort the
// whole batch.
func (r *CatalogRepository) Save(ctx context.Context, defs []effect.Definition) error {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	for _, d := range defs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO effect_definitions (name, resource, lifetime_ms, category)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO UPDATE SET
			  resource=$2, lifetime_ms=$3, category=$4, updated_at=now()`,
			d.Name, d.Resource, d.Lifetime.Milliseconds(), d.Category.String(),
		); err != nil {
			return fmt.Errorf("saving effect %q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("effect catalog saved", "count", len(defs))
	return nil
}

// Delete removes a definition. Deleting a missing name is not an error.
func (r *CatalogRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM effect_definitions WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting effect %q: %w", name, err)
	}
	return nil
}
