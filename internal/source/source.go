// Package source drives the scripted schema and data mutations against the
// replication source database.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/30Piraten/dms-cdc/internal/dbsecret"
)

// Mutator issues the fixed mutation script against the source database.
// The script is not idempotent against partial completion: a failed run
// needs Reset before it can be replayed.
type Mutator struct {
	conn *pgx.Conn
	log  *slog.Logger
}

// Connect opens a single connection with the stack-provisioned credentials.
func Connect(ctx context.Context, creds dbsecret.Credentials, log *slog.Logger) (*Mutator, error) {
	conn, err := pgx.Connect(ctx, creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to source database %s:%d: %w", creds.Host, creds.Port, err)
	}
	return &Mutator{conn: conn, log: log}, nil
}

func (m *Mutator) Close(ctx context.Context) error {
	return m.conn.Close(ctx)
}

// Reset drops the sample tables so a run starts from a clean schema.
func (m *Mutator) Reset(ctx context.Context) error {
	return m.run(ctx, dropTables)
}

// CreateTables creates authors, accounts and books.
func (m *Mutator) CreateTables(ctx context.Context) error {
	return m.run(ctx, createTables)
}

// SeedRows inserts one row into each of the three tables.
func (m *Mutator) SeedRows(ctx context.Context) error {
	return m.run(ctx, seedRows)
}

// AlterTables applies one column-level change to each of the three tables.
func (m *Mutator) AlterTables(ctx context.Context) error {
	return m.run(ctx, alterTables)
}

// run executes the statements in order inside one transaction. The first
// failure aborts the remainder of the script.
func (m *Mutator) run(ctx context.Context, stmts []string) error {
	tx, err := m.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d/%d failed: %w", i+1, len(stmts), err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	m.log.Info("executed source script", "statements", len(stmts))
	return nil
}
