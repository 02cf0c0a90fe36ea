package postgres

import (
	"context"
	"errors"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn in a transaction carried through ctx. Nested calls join the
// outer transaction, so repositories sharing a pool compose into one unit.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return persistenceError("begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return persistenceError("commit transaction", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isInvalidUUID(err error) bool {
	return pgErrorCode(err) == "22P02"
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func isExclusionViolation(err error) bool {
	return pgErrorCode(err) == "23P01"
}

func persistenceError(op string, err error) error {
	return &domain.PersistenceError{Op: op, Err: err}
}

// mapWriteError translates constraint failures shared by all writes.
func mapWriteError(op string, err error, missing error) error {
	switch {
	case isInvalidUUID(err):
		return domain.ErrInvalidID
	case isForeignKeyViolation(err) && missing != nil:
		return missing
	case isExclusionViolation(err):
		return &domain.ConflictError{Kind: domain.ConflictAreaOverlap}
	}
	return persistenceError(op, err)
}
