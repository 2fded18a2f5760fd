// Package cache provides a small TTL cache with request coalescing for
// expensive, read-only host queries.
//
// Concurrent callers asking for the same key while a query is in flight share
// that single call (golang.org/x/sync/singleflight). Successful results are
// kept until their TTL elapses or the key is invalidated; failures are never
// stored, so the next call retries. Mutating operations are expected to call
// Invalidate for every key whose backing data they changed.
package cache
