package repository

import (
	"context"
	"fmt"

	"simregistry-backend/config"
	"simregistry-backend/models"

	"github.com/google/uuid"
)

// OwnerStore is the owner half of the record repository
type OwnerStore interface {
	Create(ctx context.Context, owner *models.Owner) error
	FindByNIK(ctx context.Context, nik string) (*models.Owner, error)
	Count(ctx context.Context) (int, error)
}

// LicenseStore is the license half of the record repository
type LicenseStore interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	Update(ctx context.Context, license *models.License) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) ([]*models.License, int, error)
}

// Stores bundles the repositories of one open database handle
type Stores struct {
	Driver   config.DatabaseDriver
	Owners   OwnerStore
	Licenses LicenseStore

	// Ping checks that the database is reachable
	Ping func(ctx context.Context) error
	// ApplySchema creates the tables if they do not exist
	ApplySchema func(ctx context.Context) error
	// DropSchema removes the tables and their rows
	DropSchema func(ctx context.Context) error
	// Close releases the database handle
	Close func()
}

// Open connects to the database selected by cfg and builds its repositories
func Open(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:      cfg.DatabaseDriver,
			Owners:      NewOwnerRepository(pool),
			Licenses:    NewLicenseRepository(pool),
			Ping:        pool.Ping,
			ApplySchema: func(ctx context.Context) error { return ApplyPostgresSchema(ctx, pool) },
			DropSchema: func(ctx context.Context) error {
				_, err := pool.Exec(ctx, DropSchemaSQL)
				return err
			},
			Close: pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:      cfg.DatabaseDriver,
			Owners:      NewSQLiteOwnerRepository(db),
			Licenses:    NewSQLiteLicenseRepository(db),
			Ping:        db.PingContext,
			ApplySchema: func(ctx context.Context) error { return ApplySQLiteSchema(ctx, db) },
			DropSchema: func(ctx context.Context) error {
				_, err := db.ExecContext(ctx, DropSchemaSQL)
				return err
			},
			Close: func() { _ = db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.DatabaseDriver)
	}
}
