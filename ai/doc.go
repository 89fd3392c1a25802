// Package ai defines the embedding service abstraction used by the ingestion
// and retrieval pipelines.
//
// The Embedder interface hides the concrete backend; the openai subpackage
// implements it against any OpenAI-compatible embeddings API, and the mock
// subpackage provides a deterministic test double. Configuration follows the
// functional-option pattern with validation at construction time.
package ai
