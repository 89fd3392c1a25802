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


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/quillstack/sift/core"
	"github.com/quillstack/sift/storage"
)

// Store implements storage.VectorIndex for BadgerDB.
type Store struct {
	backend *Backend
	logger  *slog.Logger

	// now is swappable in tests.
	now func() int64
}

var _ storage.VectorIndex = (*Store)(nil)

// NewStore creates a vector store on top of an open backend.
func NewStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "vector-store"),
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Upsert stores embedded chunks as vector records and returns the owning
// document ID per input chunk, in input order.
func (s *Store) Upsert(ctx context.Context, chunks []core.EmbeddedChunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	documentIDs := make([]string, len(chunks))
	timestamp := s.now()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			id := uuid.NewString()
			documentIDs[i] = chunk.Metadata[core.MetaDocumentID]

			record := &core.VectorRecord{
				ID:           id,
				Vector:       chunk.Embedding,
				Text:         chunk.Text,
				DocumentID:   chunk.Metadata[core.MetaDocumentID],
				ChunkID:      chunk.ChunkID,
				DocumentType: chunk.Metadata[core.MetaDocumentType],
				Timestamp:    timestamp,
				Metadata:     chunk.Metadata,
			}

			if err := tx.Set(makeRecordKey(id), storage.MarshalVectorRecord(record)); err != nil {
				return err
			}

			// Document index lets deletes and listings skip the full scan.
			if record.DocumentID != "" {
				if err := tx.Set(makeDocumentKey(record.DocumentID, id), []byte(id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}

	s.logger.Debug("upserted vector records", "count", len(documentIDs))
	return documentIDs, nil
}

// Search returns records whose vector similarity meets opts.Threshold, best
// first, at most opts.Limit.
func (s *Store) Search(ctx context.Context, vector []float32, opts storage.SearchOptions) ([]*storage.SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var results []*storage.SearchResult
	err := s.scanRecords(func(record *core.VectorRecord) {
		if len(record.Vector) == 0 || !matchesFilters(record, opts) {
			return
		}

		// Vectors are stored normalized; dot product is cosine similarity.
		similarity := dotProduct(vector, record.Vector)
		if similarity >= opts.Threshold {
			results = append(results, &storage.SearchResult{
				Record:      record,
				Score:       similarity,
				VectorScore: similarity,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrSearchBackend, err)
	}

	sortResults(results)
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// HybridSearch blends vector similarity with keyword match against the query
// text: combined = alpha*vector + (1-alpha)*keyword. Candidates come from a
// vector search over a pool of 2x the requested limit at the caller's
// threshold, so keyword scoring only reorders records that already qualify.
func (s *Store) HybridSearch(ctx context.Context, vector []float32, query string, opts storage.SearchOptions) ([]*storage.SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	poolOpts := opts
	poolOpts.Limit = opts.Limit * 2

	candidates, err := s.Search(ctx, vector, poolOpts)
	if err != nil {
		return nil, err
	}

	terms := queryTerms(query)
	for _, result := range candidates {
		result.KeywordScore = keywordScore(result.Record.Text, terms)
		result.Score = float32(opts.Alpha)*result.VectorScore +
			float32(1-opts.Alpha)*result.KeywordScore
	}

	sortResults(candidates)
	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}
	return candidates, nil
}

// DeleteDocument removes every record belonging to the document.
// Returns true if any records were deleted.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	if documentID == "" {
		return false, storage.ErrInvalidQuery
	}

	deleted := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = makePartialDocumentKey(documentID)

		// Collect first: deleting while iterating invalidates the iterator.
		var indexKeys [][]byte
		var recordIDs []string

		iter := tx.NewIterator(iterOpts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			indexKeys = append(indexKeys, item.KeyCopy(nil))

			err := item.Value(func(val []byte) error {
				recordIDs = append(recordIDs, string(val))
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for i, id := range recordIDs {
			if err := tx.Delete(makeRecordKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
		}
		deleted = len(recordIDs)
		return tx.Commit()
	}, true)

	if err != nil {
		return false, err
	}

	if deleted > 0 {
		s.logger.Info("deleted document", "documentID", documentID, "records", deleted)
	}
	return deleted > 0, nil
}

// ListDocuments groups records by document, most recently ingested first.
// The second return value is the total number of documents before pagination.
// A limit <= 0 means no limit.
func (s *Store) ListDocuments(ctx context.Context, offset, limit int) ([]*core.DocumentSummary, int, error) {
	if offset < 0 {
		return nil, 0, storage.ErrInvalidQuery
	}

	groups := make(map[string]*core.DocumentSummary)
	err := s.scanRecords(func(record *core.VectorRecord) {
		if record.DocumentID == "" {
			return
		}

		summary, ok := groups[record.DocumentID]
		if !ok {
			groups[record.DocumentID] = &core.DocumentSummary{
				DocumentID:   record.DocumentID,
				Filename:     record.Metadata[core.MetaFilename],
				DocumentType: record.DocumentType,
				Timestamp:    record.Timestamp,
				ChunkCount:   1,
			}
			return
		}

		summary.ChunkCount++
		// A document's timestamp is that of its earliest chunk.
		if record.Timestamp < summary.Timestamp {
			summary.Timestamp = record.Timestamp
		}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", storage.ErrSearchBackend, err)
	}

	summaries := make([]*core.DocumentSummary, 0, len(groups))
	for _, summary := range groups {
		summaries = append(summaries, summary)
	}
	slices.SortFunc(summaries, func(a, b *core.DocumentSummary) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		return strings.Compare(a.DocumentID, b.DocumentID)
	})

	total := len(summaries)
	if offset >= total {
		return []*core.DocumentSummary{}, total, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, total, nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(vectorRecordPrefix + ":")
		iterOpts.PrefetchValues = false

		iter := tx.NewIterator(iterOpts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrSearchBackend, err)
	}
	return count, nil
}

// scanRecords reads every vector record in a read transaction and passes it
// to fn.
func (s *Store) scanRecords(fn func(record *core.VectorRecord)) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(vectorRecordPrefix + ":")

		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				fn(record)
			}
		}
		return nil
	}, false)
}

// matchesFilters applies the optional filters as an exact-match conjunction.
func matchesFilters(record *core.VectorRecord, opts storage.SearchOptions) bool {
	if opts.DocumentID != "" && record.DocumentID != opts.DocumentID {
		return false
	}
	if opts.DocumentType != "" && record.DocumentType != opts.DocumentType {
		return false
	}
	for key, want := range opts.Metadata {
		if record.Metadata[key] != want {
			return false
		}
	}
	return true
}

// sortResults orders results by score descending, record ID ascending on ties
// so pagination is stable.
func sortResults(results []*storage.SearchResult) {
	slices.SortFunc(results, func(a, b *storage.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.Record.ID, b.Record.ID)
	})
}

// queryTerms lowercases and splits the query on whitespace.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// keywordScore is the fraction of query terms that appear as substrings of
// the text, case-insensitive. No terms means no keyword signal.
func keywordScore(text string, terms []string) float32 {
	if len(terms) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float32(matched) / float32(len(terms))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
