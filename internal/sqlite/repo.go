// Package sqlite implements the storage layer over a single sqlite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/anjohnson/fstop/internal/fstop"
)

// Ensure Repo implements the read surface consumed by the UI layer.
var _ fstop.ReadStore = (*Repo)(nil)

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx, so the same queries run
// in and out of a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type Repo struct {
	db  *sqlx.DB
	ext dbtx
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db, ext: db}
}

// InTx runs fn against one transaction, committing on success. The sync
// engine uses this for its phase and per-collection commit boundaries, so a
// crash mid-run loses at most the in-flight unit.
func (r Repo) InTx(ctx context.Context, fn func(Repo) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	if err := fn(Repo{db: r.db, ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("error rolling back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// orderClause maps a whitelisted sort onto SQL. The prefix qualifies the
// photos table in queries that join others.
func orderClause(orderBy fstop.OrderBy, prefix string) (string, error) {
	switch orderBy {
	case fstop.OrderLatest:
		return prefix + "created_at DESC", nil
	case fstop.OrderOldest:
		return prefix + "created_at ASC", nil
	case fstop.OrderPopular, "":
		return prefix + "views DESC, " + prefix + "created_at DESC", nil
	}

	return "", fmt.Errorf("unknown order %q", orderBy)
}

// pageWindow normalizes pagination arguments into limit/offset. The limit
// includes one extra row so has-more needs no COUNT query.
func pageWindow(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	return perPage + 1, (page - 1) * perPage
}
