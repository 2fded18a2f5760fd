// Package testdb connects integration tests to the Postgres database named
// by DATABASE_URL (or LAUNCHPAD_TEST_DB_URL) and migrates it to the current
// schema. Tests using it are skipped when neither variable is set.
package testdb
