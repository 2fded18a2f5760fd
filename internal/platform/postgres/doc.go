// Package postgres stores per-game configuration in PostgreSQL through
// database/sql and the pgx driver. Schema migrations are embedded and
// applied with goose.
package postgres
