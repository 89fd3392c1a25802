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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/quillstack/sift/chunk"
	"github.com/quillstack/sift/core"
	"github.com/quillstack/sift/embed"
	"github.com/quillstack/sift/jobs"
	"github.com/quillstack/sift/storage"
)

// DefaultPoolSize bounds concurrent document processing in a batch.
const DefaultPoolSize = 5

// Query modes.
const (
	ModeVector  = "vector"
	ModeHybrid  = "hybrid"
	ModeKeyword = "keyword"
)

// Document is one batch ingestion input.
type Document struct {
	Filename string
	Data     []byte
	Metadata map[string]string
}

// IngestResult summarizes a successful single-document ingestion.
type IngestResult struct {
	DocumentID   string
	Filename     string
	DocumentType string
	Hash         string
	Chunks       int
}

// QueryOptions selects the retrieval mode and its parameters.
type QueryOptions struct {
	// Mode is one of ModeVector, ModeHybrid, ModeKeyword.
	Mode string

	Search storage.SearchOptions
}

// DefaultQueryOptions returns hybrid retrieval with production defaults.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Mode:   ModeHybrid,
		Search: storage.DefaultSearchOptions(),
	}
}

// Pipeline runs documents through validation, extraction, chunking,
// embedding, and storage.
type Pipeline struct {
	chunker   chunk.Strategy
	generator *embed.Generator
	index     storage.VectorIndex
	tracker   *jobs.Tracker
	poolSize  int
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPoolSize sets the number of documents processed concurrently in a batch.
func WithPoolSize(n int) PipelineOption {
	return func(p *Pipeline) {
		p.poolSize = n
	}
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(chunker chunk.Strategy, generator *embed.Generator, index storage.VectorIndex, tracker *jobs.Tracker, opts ...PipelineOption) (*Pipeline, error) {
	if chunker == nil || generator == nil || index == nil || tracker == nil {
		return nil, fmt.Errorf("pipeline requires chunker, generator, index, and tracker")
	}

	p := &Pipeline{
		chunker:   chunker,
		generator: generator,
		index:     index,
		tracker:   tracker,
		poolSize:  DefaultPoolSize,
		logger:    slog.Default().With("component", "ingest-pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.poolSize <= 0 {
		p.poolSize = DefaultPoolSize
	}
	return p, nil
}

// Ingest processes a single document end to end and returns its summary.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte, metadata map[string]string) (*IngestResult, error) {
	return p.ingest(ctx, Document{Filename: filename, Data: data, Metadata: metadata}, uuid.NewString())
}

func (p *Pipeline) ingest(ctx context.Context, doc Document, documentID string) (*IngestResult, error) {
	info, err := core.ValidateFile(doc.Data, doc.Filename)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(doc.Data, info)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateContent(text, info.DocumentType); err != nil {
		return nil, err
	}

	metadata := core.SanitizeMetadata(doc.Metadata)
	metadata[core.MetaDocumentID] = documentID
	metadata[core.MetaFilename] = info.Filename
	metadata[core.MetaDocumentType] = info.DocumentType
	metadata[core.MetaFileHash] = info.Hash

	chunks, err := p.chunker.Chunk(ctx, text, metadata)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", info.Filename, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyContent, info.Filename)
	}

	embedded, err := p.generator.Generate(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", info.Filename, err)
	}

	if _, err := p.index.Upsert(ctx, embedded); err != nil {
		return nil, fmt.Errorf("storing %s: %w", info.Filename, err)
	}

	p.logger.Info("document ingested",
		"documentID", documentID,
		"filename", info.Filename,
		"chunks", len(chunks))

	return &IngestResult{
		DocumentID:   documentID,
		Filename:     info.Filename,
		DocumentType: info.DocumentType,
		Hash:         info.Hash,
		Chunks:       len(chunks),
	}, nil
}

// IngestBatch registers a job for the documents and returns its ID
// immediately; processing continues in the background through a bounded
// worker pool. Failures are isolated to their own document and reflected in
// the job record, which callers poll via the tracker.
func (p *Pipeline) IngestBatch(ctx context.Context, docs []Document) (string, error) {
	if len(docs) == 0 {
		return "", ErrEmptyBatch
	}

	jobID := uuid.NewString()
	if _, err := p.tracker.CreateJob(ctx, jobID, len(docs)); err != nil {
		return "", err
	}

	go p.runBatch(ctx, jobID, docs)
	return jobID, nil
}

// runBatch drives a batch job to completion: every document is attempted on
// the worker pool and its outcome reported against the job.
func (p *Pipeline) runBatch(ctx context.Context, jobID string, docs []Document) {
	pool, err := ants.NewPool(p.poolSize)
	if err != nil {
		if _, failErr := p.tracker.MarkJobFailed(ctx, jobID, err.Error()); failErr != nil {
			p.logger.Error("failed to mark job failed", "jobID", jobID, "err", failErr)
		}
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, doc := range docs {
		doc := doc
		documentID := uuid.NewString()

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			_, ingestErr := p.ingest(ctx, doc, documentID)
			if ingestErr != nil {
				p.logger.Warn("document failed in batch",
					"jobID", jobID, "filename", doc.Filename, "err", ingestErr)
			}
			if _, err := p.tracker.ReportDocument(ctx, jobID, documentID, doc.Filename, ingestErr); err != nil {
				p.logger.Error("failed to record document outcome",
					"jobID", jobID, "documentID", documentID, "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			if _, err := p.tracker.ReportDocument(ctx, jobID, documentID, doc.Filename, submitErr); err != nil {
				p.logger.Error("failed to record document outcome",
					"jobID", jobID, "documentID", documentID, "err", err)
			}
		}
	}
	wg.Wait()
}

// Query embeds the query text and dispatches to the configured search mode.
// Keyword mode runs a hybrid search with alpha 0, so ranking comes entirely
// from term matching while the vector stage still supplies the candidates.
func (p *Pipeline) Query(ctx context.Context, query string, opts QueryOptions) ([]*storage.SearchResult, error) {
	vector, err := p.generator.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	switch opts.Mode {
	case ModeVector:
		return p.index.Search(ctx, vector, opts.Search)
	case ModeHybrid:
		return p.index.HybridSearch(ctx, vector, query, opts.Search)
	case ModeKeyword:
		keywordOpts := opts.Search
		keywordOpts.Alpha = 0
		return p.index.HybridSearch(ctx, vector, query, keywordOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}

// SearchFunc returns a retrieval closure shaped for callers that plug the
// pipeline into agent toolkits. Mode, limit, and hybrid alpha fall back to
// production defaults when unset; threshold and filters are taken from the
// caller as-is.
func (p *Pipeline) SearchFunc() func(ctx context.Context, query string, opts QueryOptions) ([]*storage.SearchResult, error) {
	return func(ctx context.Context, query string, opts QueryOptions) ([]*storage.SearchResult, error) {
		defaults := DefaultQueryOptions()
		if opts.Mode == "" {
			opts.Mode = defaults.Mode
		}
		if opts.Search.Limit == 0 {
			opts.Search.Limit = defaults.Search.Limit
		}
		if opts.Search.Alpha == 0 && opts.Mode == ModeHybrid {
			opts.Search.Alpha = defaults.Search.Alpha
		}
		return p.Query(ctx, query, opts)
	}
}
