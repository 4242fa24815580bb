package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scaffold/internal/thing/models"
	"scaffold/pkg/platform/sentinel"
	"scaffold/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS things (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists things in PostgreSQL through database/sql. Calls join
// the transaction carried by the context, if any.
type PostgresStore struct {
	db *sql.DB
}

var _ models.Repository = (*PostgresStore)(nil)

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the things table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := tx.Conn(ctx, s.db).ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("migrate things: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Save(ctx context.Context, thing *models.Thing) error {
	query := `
		INSERT INTO things (id, name, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Conn(ctx, s.db).ExecContext(ctx, query, thing.ID().String(), thing.Name().String()); err != nil {
		return fmt.Errorf("save thing: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id models.ThingID) (*models.Thing, error) {
	var snap models.Snapshot
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT id, name FROM things WHERE id = $1`, id.String()).
		Scan(&snap.ID, &snap.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find thing: %w", err)
	}
	return models.Reconstitute(snap), nil
}
