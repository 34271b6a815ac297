package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores every blob in a single key/jsonb table. Update runs inside
// a transaction with the row locked, so concurrent writers against the same
// key serialize instead of clobbering each other.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres bootstraps the record_store table and returns the engine.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS record_store (
			key        text PRIMARY KEY,
			value      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create record_store table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, "SELECT value FROM record_store WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return raw, true, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO record_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE on an absent row locks nothing, so two first writers to a new
	// key could both see nil and the later commit would drop the earlier one.
	// Inserting a placeholder first makes the row exist; a concurrent inserter
	// blocks on the conflict until this transaction finishes.
	tag, err := tx.Exec(ctx, `
		INSERT INTO record_store (key, value, updated_at)
		VALUES ($1, 'null'::jsonb, NOW())
		ON CONFLICT (key) DO NOTHING
	`, key)
	if err != nil {
		return fmt.Errorf("failed to claim key %s: %w", key, err)
	}

	var current []byte
	if tag.RowsAffected() == 0 {
		// The key already existed; lock and read the committed value.
		err = tx.QueryRow(ctx, "SELECT value FROM record_store WHERE key = $1 FOR UPDATE", key).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock key %s: %w", key, err)
		}
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO record_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, next)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	return tx.Commit(ctx)
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM record_store WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT key FROM record_store WHERE key LIKE $1 || '%' ORDER BY key", prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
