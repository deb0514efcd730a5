// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx stdlib driver. It also carries the
// schema as embedded goose migrations.
package postgres
