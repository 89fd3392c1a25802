// Package badger implements storage.VectorIndex on BadgerDB.
//
// Records are stored under a record prefix keyed by UUID, with a secondary
// index keyed by document ID so document-scoped deletes and listings avoid a
// full scan. Similarity search is a linear scan over record values; vectors
// are stored normalized, so similarity is a plain dot product.
package badger
