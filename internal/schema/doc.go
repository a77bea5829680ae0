// Package schema holds the attribute definitions and ident bindings of
// the store as one immutable snapshot, plus the pure logic for evolving
// that snapshot from committed metadata assertions.
//
// A Schema is never mutated in place. The transaction coordinator owns
// the current snapshot and replaces it wholesale after each successful
// commit, so readers never observe a half-updated schema.
package schema
