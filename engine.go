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


package sift

import (
	"context"
	"log/slog"

	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/ai/openai"
	"github.com/quillstack/sift/chunk"
	"github.com/quillstack/sift/core"
	"github.com/quillstack/sift/embed"
	"github.com/quillstack/sift/ingest"
	"github.com/quillstack/sift/jobs"
	"github.com/quillstack/sift/storage"
	storagebadger "github.com/quillstack/sift/storage/badger"
)

// Engine is the assembled system: storage, embedding, chunking, job
// tracking, and the pipeline over them.
type Engine struct {
	store     *storagebadger.Store
	embedder  ai.Embedder
	generator *embed.Generator
	tracker   *jobs.Tracker
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	chunkStrategy string
	chunkSize     int
	chunkOverlap  int
	redisAddr     string
	redisPassword string
	redisDB       int
	poolSize      int
	inMemory      bool
	embedder      ai.Embedder
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithChunking selects the chunking strategy and its parameters.
func WithChunking(strategy string, size, overlap int) EngineOption {
	return func(o *engineOptions) {
		o.chunkStrategy = strategy
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithRedis enables Redis-backed job tracking.
func WithRedis(addr, password string, db int) EngineOption {
	return func(o *engineOptions) {
		o.redisAddr = addr
		o.redisPassword = password
		o.redisDB = db
	}
}

// WithPoolSize bounds batch ingestion concurrency.
func WithPoolSize(n int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = n
	}
}

// WithInMemory keeps the vector index in memory instead of on disk.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithEmbedder injects an embedder, bypassing the OpenAI client. Used in
// tests and for custom backends.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// Open assembles an engine over the database directory at path. Construction
// is all-or-nothing: any failing component closes what was already opened.
func Open(path string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		chunkStrategy: chunk.StrategySlidingWindow,
		chunkSize:     chunk.DefaultChunkSize,
		chunkOverlap:  chunk.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	chunkOpts := []chunk.Option{
		chunk.WithChunkSize(options.chunkSize),
		chunk.WithChunkOverlap(options.chunkOverlap),
	}
	if options.chunkStrategy == chunk.StrategySemantic {
		chunkOpts = append(chunkOpts, chunk.WithSplitter(chunk.EmbedderSplitter(embedder, 95)))
	}
	chunker, err := chunk.New(options.chunkStrategy, chunkOpts...)
	if err != nil {
		return nil, err
	}

	generator, err := embed.NewGenerator(embedder, options.aiConfig)
	if err != nil {
		return nil, err
	}

	backend, err := storagebadger.OpenBackend(path, options.inMemory)
	if err != nil {
		return nil, err
	}
	store := storagebadger.NewStore(backend)

	trackerOpts := []jobs.TrackerOption{}
	if options.redisAddr != "" {
		trackerOpts = append(trackerOpts,
			jobs.WithRedis(options.redisAddr, options.redisPassword, options.redisDB))
	}
	tracker := jobs.NewTracker(context.Background(), trackerOpts...)

	pipelineOpts := []ingest.PipelineOption{}
	if options.poolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithPoolSize(options.poolSize))
	}
	pipeline, err := ingest.NewPipeline(chunker, generator, store, tracker, pipelineOpts...)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Engine{
		store:     store,
		embedder:  embedder,
		generator: generator,
		tracker:   tracker,
		pipeline:  pipeline,
		logger:    slog.Default(),
	}, nil
}

// Close releases the engine's storage.
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// Pipeline returns the ingestion pipeline.
func (e *Engine) Pipeline() *ingest.Pipeline {
	return e.pipeline
}

// Tracker returns the batch job tracker.
func (e *Engine) Tracker() *jobs.Tracker {
	return e.tracker
}

// Index returns the vector index.
func (e *Engine) Index() storage.VectorIndex {
	return e.store
}

// Ingest processes a single document.
func (e *Engine) Ingest(ctx context.Context, filename string, data []byte, metadata map[string]string) (*ingest.IngestResult, error) {
	return e.pipeline.Ingest(ctx, filename, data, metadata)
}

// IngestBatch processes documents concurrently and returns the job ID.
func (e *Engine) IngestBatch(ctx context.Context, docs []ingest.Document) (string, error) {
	return e.pipeline.IngestBatch(ctx, docs)
}

// Query retrieves chunks relevant to the query text.
func (e *Engine) Query(ctx context.Context, query string, opts ingest.QueryOptions) ([]*storage.SearchResult, error) {
	return e.pipeline.Query(ctx, query, opts)
}

// DeleteDocument removes a document and all its chunks.
func (e *Engine) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	return e.store.DeleteDocument(ctx, documentID)
}

// ListDocuments returns per-document summaries with pagination.
func (e *Engine) ListDocuments(ctx context.Context, offset, limit int) ([]*core.DocumentSummary, int, error) {
	return e.store.ListDocuments(ctx, offset, limit)
}

// Job returns the state of a batch ingestion job.
func (e *Engine) Job(ctx context.Context, jobID string) (*jobs.Job, error) {
	return e.tracker.GetJob(ctx, jobID)
}
