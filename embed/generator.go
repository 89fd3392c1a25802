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


package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/core"
)

// Default retry and caching parameters for embedding backend calls.
const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	DefaultCacheSize      = 1000
)

// Generator produces embedded chunks from chunk batches.
type Generator struct {
	embedder       ai.Embedder
	dimension      int
	batchSize      int
	callTimeout    time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	cacheSize      int
	cache          *ai.Cache
	logger         *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxRetries sets the maximum number of attempts per backend call.
func WithMaxRetries(n int) GeneratorOption {
	return func(g *Generator) {
		g.maxRetries = n
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff.
func WithRetryBaseDelay(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.retryBaseDelay = d
	}
}

// WithCacheSize bounds the in-process embedding cache. Zero disables caching.
func WithCacheSize(n int) GeneratorOption {
	return func(g *Generator) {
		g.cacheSize = n
	}
}

// NewGenerator creates a Generator that embeds via embedder, batching and
// validating per config. Repeated texts are served from a bounded in-process
// cache instead of the backend.
func NewGenerator(embedder ai.Embedder, config *ai.Config, opts ...GeneratorOption) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		embedder:       embedder,
		dimension:      config.Dimension,
		batchSize:      config.BatchSize,
		callTimeout:    config.Timeout,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		cacheSize:      DefaultCacheSize,
		logger:         slog.Default().With("component", "embed-generator"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.maxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	g.cache = ai.NewCache(g.cacheSize)
	return g, nil
}

// Generate embeds all chunks and returns them paired with their vectors, in
// input order. Chunks are processed in batches; each batch is retried with
// exponential backoff on backend failure. An empty input returns an empty
// result without calling the backend.
func (g *Generator) Generate(ctx context.Context, chunks []core.Chunk) ([]core.EmbeddedChunk, error) {
	if len(chunks) == 0 {
		return []core.EmbeddedChunk{}, nil
	}

	embedded := make([]core.EmbeddedChunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += g.batchSize {
		end := start + g.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := g.embedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}

		for i, c := range batch {
			embedded = append(embedded, core.EmbeddedChunk{
				Chunk:     c,
				Embedding: vectors[i],
			})
		}
	}

	g.logger.Debug("generated embeddings", "chunks", len(chunks))
	return embedded, nil
}

// EmbedQuery embeds a single query string with the same retry, dimension, and
// normalization rules as chunk embedding.
func (g *Generator) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := g.embedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedBatch serves cached texts locally and performs one retried backend
// call for the rest, validating the result. Dimension mismatches are checked
// after the retry loop: a wrong-size vector means the model and configuration
// disagree, and retrying cannot fix that.
func (g *Generator) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := g.cache.Get(text); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	var fresh [][]float32
	err := RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		defer cancel()

		var err error
		fresh, err = g.embedder.EmbedTexts(callCtx, missing)
		return err
	}, g.maxRetries, g.retryBaseDelay)

	if err != nil {
		g.logger.Error("embedding batch failed", "texts", len(missing), "attempts", g.maxRetries, "err", err)
		return nil, fmt.Errorf("%w: after %d attempts: %v", ErrBackend, g.maxRetries, err)
	}

	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrBackend, len(missing), len(fresh))
	}

	for i, vec := range fresh {
		if len(vec) != g.dimension {
			return nil, fmt.Errorf("%w: expected %d, got %d (vector %d)", ErrDimensionMismatch, g.dimension, len(vec), i)
		}
		normalized := NormalizeVector(vec)
		vectors[missingIdx[i]] = normalized
		g.cache.Set(missing[i], normalized)
	}

	return vectors, nil
}
