package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/hangeul-lab/authoring/internal/store"
)

// insertOwned runs an INSERT ... SELECT ... RETURNING id whose SELECT only
// yields a row when the caller owns the parent. No row means notFound.
func insertOwned(ctx context.Context, db store.DBTX, log *slog.Logger, op string, notFound error, query string, args ...any) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Debug("parent not found or not owned", slog.String("op", op))
		return 0, notFound
	case err != nil:
		log.Error("insert failed", slog.String("op", op), slog.String("error", err.Error()))
		return 0, opError(op, err)
	}
	log.Debug("row inserted", slog.String("op", op), slog.Int64("id", id))
	return id, nil
}

// execOwned runs an UPDATE or DELETE constrained to rows the caller owns.
// Touching no row means notFound.
func execOwned(ctx context.Context, db store.DBTX, log *slog.Logger, op string, notFound error, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("statement failed", slog.String("op", op), slog.String("error", err.Error()))
		return opError(op, err)
	}
	if err := CheckRowsAffected(result, notFound); err != nil {
		log.Debug("no owned row affected", slog.String("op", op))
		return err
	}
	return nil
}

// opError maps a driver error and records which operation failed. op is
// written as verb_entity, e.g. "create_lesson_material".
func opError(op string, err error) error {
	verb, entity, _ := strings.Cut(op, "_")
	return store.NewStoreError(strings.ReplaceAll(entity, "_", " "), verb, "query failed", MapError(err))
}

// nullableID maps the zero id to SQL NULL.
func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
