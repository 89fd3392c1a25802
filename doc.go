// Package sift is a document ingestion and hybrid retrieval engine.
//
// Documents are validated, converted to plain text, split by a configurable
// chunking strategy, embedded through an OpenAI-compatible service, and stored
// in an embedded vector index. Retrieval blends vector similarity with
// keyword matching. Batch ingestion progress is tracked in Redis when
// available, with an in-process fallback.
package sift
