// Package repositories wires the local durable cache: opens the SQLite
// database, applies goose migrations and hands out the per-aggregate
// repositories.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmribeiro/recibox/internal/migrations"
	"github.com/dmribeiro/recibox/internal/repositories/contracts"
	"github.com/dmribeiro/recibox/internal/repositories/documents"
	"github.com/dmribeiro/recibox/internal/repositories/metadata"
	"github.com/dmribeiro/recibox/internal/repositories/tombstones"
)

type Repositories struct {
	Documents  documents.Repository
	Tombstones tombstones.Repository
	Contracts  contracts.Repository
	Metadata   metadata.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the cache database, migrates it and returns the handle
// together with repositories bound to it. The caller owns closing the DB.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Documents:  documents.NewSQLiteRepository(db),
		Tombstones: tombstones.NewSQLiteRepository(db),
		Contracts:  contracts.NewSQLiteRepository(db),
		Metadata:   metadata.NewSQLiteRepository(db),
	}
	return db, repos, nil
}
