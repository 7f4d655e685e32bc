// Package sqlite provides the modernc.org/sqlite backed repository.Store.
//
// The schema ships as goose migrations embedded in the binary. Reads go
// straight to the pool; SaveChanges replays a session's staged changes inside
// one database/sql transaction.
package sqlite
