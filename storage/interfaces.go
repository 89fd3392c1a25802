// Copyright 2026 Quillstack Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"context"

	"github.com/quillstack/sift/core"
)

// Default search parameters.
const (
	DefaultSearchLimit     = 10
	DefaultSearchThreshold = 0.7
	DefaultHybridAlpha     = 0.5
)

// SearchOptions controls similarity and hybrid searches.
type SearchOptions struct {
	// Limit caps the number of results. Must be > 0.
	Limit int

	// Threshold is the minimum vector similarity for a record to qualify.
	Threshold float32

	// Alpha weights the vector score in hybrid search:
	// combined = alpha*vector + (1-alpha)*keyword. Must be in [0, 1].
	Alpha float64

	// DocumentID restricts results to a single document when non-empty.
	DocumentID string

	// DocumentType restricts results to one document type when non-empty.
	DocumentType string

	// Metadata is an exact-match conjunction over record metadata: a record
	// qualifies only if every key maps to exactly this value.
	Metadata map[string]string
}

// DefaultSearchOptions returns SearchOptions with production defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:     DefaultSearchLimit,
		Threshold: DefaultSearchThreshold,
		Alpha:     DefaultHybridAlpha,
	}
}

// Validate checks that the options are usable.
func (o SearchOptions) Validate() error {
	if o.Limit <= 0 {
		return ErrInvalidQuery
	}
	if o.Alpha < 0 || o.Alpha > 1 {
		return ErrInvalidQuery
	}
	return nil
}

// SearchResult pairs a stored record with its scores. VectorScore and
// KeywordScore are only both meaningful for hybrid search; for pure vector
// search Score equals VectorScore and KeywordScore is zero.
type SearchResult struct {
	Record       *core.VectorRecord
	Score        float32
	VectorScore  float32
	KeywordScore float32
}

// VectorIndex stores embedded chunks and serves similarity queries over them.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Upsert stores embedded chunks as vector records and returns the owning
	// document ID per input chunk, in input order (values repeat when several
	// chunks share a document).
	Upsert(ctx context.Context, chunks []core.EmbeddedChunk) ([]string, error)

	// Search returns records whose vector similarity to the query vector
	// meets opts.Threshold, best first, at most opts.Limit.
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]*SearchResult, error)

	// HybridSearch blends vector similarity with keyword match against the
	// query text, weighted by opts.Alpha.
	HybridSearch(ctx context.Context, vector []float32, query string, opts SearchOptions) ([]*SearchResult, error)

	// DeleteDocument removes every record belonging to the document.
	// Returns true if any records were deleted.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// ListDocuments returns per-document summaries, most recent first, along
	// with the total number of documents before pagination.
	ListDocuments(ctx context.Context, offset, limit int) ([]*core.DocumentSummary, int, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
