// Package kvstore implements the client's durable key-value storage, the Go
// counterpart of browser local storage. Values are opaque byte slices.
//
// Backends:
//   - SQLiteRepository: default; single table "kv" managed by goose migrations.
//   - FileRepository:   one JSON document on disk, rewritten atomically.
//   - RedisRepository:  keys under a prefix in a Redis database.
//   - MemoryRepository: process-local, for tests and throwaway sessions.
//
// Contract shared by all backends:
//   - Get returns (nil, nil) for an absent key.
//   - DeleteMany of absent keys is not an error.
//   - SetMany/DeleteMany apply all keys in one storage operation where the
//     backend allows it (transaction, MULTI, single file write).
//   - Concurrent writers are last-write-wins.
package kvstore
