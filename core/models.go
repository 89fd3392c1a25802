package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Well-known metadata keys attached to every chunk of a document.
const (
	// MetaDocumentID is the key for the owning document's identifier.
	MetaDocumentID = "document_id"
	// MetaFilename is the key for the original upload filename.
	MetaFilename = "filename"
	// MetaDocumentType is the key for the detected document type (pdf, txt, json, md).
	MetaDocumentType = "document_type"
	// MetaFileHash is the key for the content hash of the source file.
	MetaFileHash = "file_hash"
	// MetaChunkingStrategy is the key for the strategy that produced the chunk.
	MetaChunkingStrategy = "chunking_strategy"
)

// HashContent computes a deterministic hex-encoded BLAKE2b-256 hash of content.
// Identical content always produces the identical hash, which makes it usable
// both as a file fingerprint and as a cache key.
func HashContent(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Chunk is a contiguous unit of a document's text prepared for independent
// retrieval. ChunkIDs are 0-based and contiguous within a document.
type Chunk struct {
	Text       string
	ChunkID    int
	StartIndex int // Rune offset of the chunk's first character in the source text
	EndIndex   int // Rune offset one past the chunk's last character
	Metadata   map[string]string
}

// EmbeddedChunk is a Chunk enriched with its embedding vector.
// All embeddings produced by one generator share the same dimension.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// VectorRecord is the persisted unit of the vector index. Records are
// immutable after upsert except for full replacement, and are deleted only
// through document-scoped bulk deletion.
type VectorRecord struct {
	ID           string // UUID assigned at upsert time
	Vector       []float32
	Text         string
	DocumentID   string
	ChunkID      int
	DocumentType string
	Timestamp    int64 // Unix seconds, assigned at upsert time
	Metadata     map[string]string
}

// DocumentSummary is one row of the document listing: a per-document rollup
// derived from that document's records.
type DocumentSummary struct {
	DocumentID   string
	Filename     string
	DocumentType string
	Timestamp    int64 // Timestamp of the document's earliest record
	ChunkCount   int
}
