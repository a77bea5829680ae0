// Package datom defines the core value model of the fact store.
//
// A datom is one (entity, attribute, value, transaction, added) fact.
// Entities and attributes are numeric ids (Entid); values are one of a
// closed set of typed variants (TypedValue). Every typed value has a
// stable SQL encoding: a storage value plus a small integer type tag,
// so that longs and doubles can share SQLite's numeric affinity while
// remaining distinguishable from refs and instants.
//
// The TypedValue interface is sealed: only the variants declared in
// this package implement it, which lets the transactor switch over the
// full set exhaustively.
package datom
