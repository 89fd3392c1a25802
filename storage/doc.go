// Package storage defines the vector index abstraction and its wire formats.
//
// The VectorIndex interface covers upsert, similarity search, hybrid
// vector+keyword search, document-scoped deletion, and grouped document
// listing. The badger subpackage provides the persistent implementation.
package storage
