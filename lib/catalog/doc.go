// Package catalog is a small product catalog built on the marshal engine. Items are
// never stored as Go values, every backend keeps their flat message form:
//
//	id=6ba7...&name=table&tags[0]=furniture&price=249.99&status=active&stock[berlin]=3
//
// Key Components:
//
//   - Item: The catalog entry, declared to the engine with an explicit schema by
//     Register. The read-only TotalStock member is part of the schema but never
//     persisted.
//
//   - IStore Interface: Put, Get, Delete, List and Has. Errors are *Error values
//     carrying a RetCode.
//
// Implementations:
//
//   - Memory Store (NewMemoryStore): The wire string of every item in a concurrent
//     map.
//
//   - Redis Store (NewRedisStore): One Redis hash per item whose fields are the
//     structural keys, plus a set indexing all item IDs. A Put replaces the whole hash
//     so members removed from an item do not survive.
//
// The conformance suite for both lives in the catalog/testing package.
package catalog
