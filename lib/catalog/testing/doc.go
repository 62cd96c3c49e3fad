// Package testing provides a conformance test suite for implementations of the
// catalog.IStore interface.
//
// Example usage:
//
//	factory := func() catalog.IStore {
//		return catalog.NewMemoryStore(engine)
//	}
//	testing.RunStoreTests(t, "MemoryStore", factory)
package testing
