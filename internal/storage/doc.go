// Package storage is the SQLite layer of the fact store.
//
// It owns the persisted layout: the current-state projection (datoms),
// the append-only transaction log (transactions), the idents and schema
// materialized views, the known partitions, and the deduplicated
// fulltext values. The transaction coordinator drives every mutation
// through one exclusive SQL transaction per commit; functions here that
// take a DBTX run inside that scope.
//
// Every multi-row statement is chunked to stay under SQLite's bind
// parameter limit while remaining atomic within the enclosing
// transaction.
package storage
