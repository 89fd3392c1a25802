// Package ingest wires validation, text extraction, chunking, embedding, and
// vector storage into a document pipeline.
//
// Single documents run synchronously through Ingest. Batches run through a
// bounded worker pool with per-document isolation: one bad document fails its
// own slot in the job record and the rest of the batch proceeds. Retrieval
// goes through Query, which dispatches to vector, hybrid, or keyword search.
package ingest
