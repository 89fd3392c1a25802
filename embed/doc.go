// Package embed turns chunks into embedded chunks ready for storage.
//
// The Generator batches backend calls, retries transient failures with
// exponential backoff, enforces the configured vector dimension, and
// normalizes every vector to unit length so the vector store can score
// similarity with a plain dot product.
package embed
