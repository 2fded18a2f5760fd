// Package service contains the launcher's settings use cases.
//
// GameSettings fronts the saved game configuration and the host's read-only
// queries with a request cache. Reads are cached per key; every mutation
// invalidates the keys listed for it in the package's invalidation table, so
// the consistency rules live in one place and are checked by a test.
package service
