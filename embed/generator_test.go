package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/ai/mock"
	"github.com/quillstack/sift/core"
)

func testConfig(dim, batch int) *ai.Config {
	return ai.NewConfig(ai.WithDimension(dim), ai.WithBatchSize(batch))
}

func makeChunks(n int) []core.Chunk {
	chunks := make([]core.Chunk, n)
	for i := range chunks {
		chunks[i] = core.Chunk{Text: fmt.Sprintf("chunk %d", i), ChunkID: i}
	}
	return chunks
}

func TestGeneratorGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input makes no backend call", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		gen, err := NewGenerator(embedder, testConfig(8, 32))
		require.NoError(t, err)

		out, err := gen.Generate(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("batches of batchSize", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		var batchSizes []int
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(texts))
			vecs := make([][]float32, len(texts))
			for i := range texts {
				vecs[i] = []float32{1, 0, 0, 0}
			}
			return vecs, nil
		}

		gen, err := NewGenerator(embedder, testConfig(4, 32))
		require.NoError(t, err)

		out, err := gen.Generate(ctx, makeChunks(70))
		require.NoError(t, err)
		require.Len(t, out, 70)
		assert.Equal(t, []int{32, 32, 6}, batchSizes)
	})

	t.Run("order preserved across batches", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dimension = 8

		gen, err := NewGenerator(embedder, testConfig(8, 3))
		require.NoError(t, err)

		chunks := makeChunks(10)
		out, err := gen.Generate(ctx, chunks)
		require.NoError(t, err)
		require.Len(t, out, 10)
		for i, ec := range out {
			assert.Equal(t, chunks[i].Text, ec.Text)
			assert.Equal(t, i, ec.ChunkID)
			assert.Len(t, ec.Embedding, 8)
		}
	})

	t.Run("vectors are normalized", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{3, 4, 0, 0}}, nil
		}

		gen, err := NewGenerator(embedder, testConfig(4, 32))
		require.NoError(t, err)

		out, err := gen.Generate(ctx, makeChunks(1))
		require.NoError(t, err)
		require.Len(t, out, 1)

		var norm float64
		for _, v := range out[0].Embedding {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	})

	t.Run("transient failure recovers within retry budget", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("temporarily unavailable")
			}
			vecs := make([][]float32, len(texts))
			for i := range texts {
				vecs[i] = []float32{1, 0}
			}
			return vecs, nil
		}

		gen, err := NewGenerator(embedder, testConfig(2, 32),
			WithRetryBaseDelay(time.Millisecond))
		require.NoError(t, err)

		out, err := gen.Generate(ctx, makeChunks(2))
		require.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, 3, calls)
	})

	t.Run("persistent failure wraps ErrBackend", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			return nil, errors.New("down")
		}

		gen, err := NewGenerator(embedder, testConfig(2, 32),
			WithRetryBaseDelay(time.Millisecond))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, makeChunks(1))
		assert.ErrorIs(t, err, ErrBackend)
		assert.Equal(t, DefaultMaxRetries, calls)
	})

	t.Run("dimension mismatch is fatal and not retried", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			return [][]float32{{1, 2, 3}}, nil
		}

		gen, err := NewGenerator(embedder, testConfig(1536, 32),
			WithRetryBaseDelay(time.Millisecond))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, makeChunks(1))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Equal(t, 1, calls)
	})

	t.Run("count mismatch is a backend error", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{}, nil
		}

		gen, err := NewGenerator(embedder, testConfig(2, 32))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, makeChunks(1))
		assert.ErrorIs(t, err, ErrBackend)
	})

	t.Run("repeated texts are served from the cache", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dimension = 4

		gen, err := NewGenerator(embedder, testConfig(4, 32))
		require.NoError(t, err)

		first, err := gen.Generate(ctx, makeChunks(3))
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.CallCount())

		second, err := gen.Generate(ctx, makeChunks(3))
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.CallCount())
		for i := range first {
			assert.Equal(t, first[i].Embedding, second[i].Embedding)
		}
	})

	t.Run("partial cache hits only embed the misses", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dimension = 4
		var lastBatch []string
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			lastBatch = texts
			vecs := make([][]float32, len(texts))
			for i := range texts {
				vecs[i] = []float32{1, 0, 0, 0}
			}
			return vecs, nil
		}

		gen, err := NewGenerator(embedder, testConfig(4, 32))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, makeChunks(2))
		require.NoError(t, err)

		out, err := gen.Generate(ctx, makeChunks(4))
		require.NoError(t, err)
		require.Len(t, out, 4)
		assert.Equal(t, []string{"chunk 2", "chunk 3"}, lastBatch)
	})

	t.Run("zero cache size disables caching", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dimension = 4

		gen, err := NewGenerator(embedder, testConfig(4, 32), WithCacheSize(0))
		require.NoError(t, err)

		_, err = gen.Generate(ctx, makeChunks(1))
		require.NoError(t, err)
		_, err = gen.Generate(ctx, makeChunks(1))
		require.NoError(t, err)
		assert.Equal(t, 2, embedder.CallCount())
	})
}

func TestGeneratorEmbedQuery(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 4

	gen, err := NewGenerator(embedder, testConfig(4, 32))
	require.NoError(t, err)

	vec, err := gen.EmbedQuery(context.Background(), "what is this about")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestNewGenerator(t *testing.T) {
	t.Run("invalid config rejected", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockEmbedder(), ai.NewConfig(ai.WithDimension(0)))
		assert.Error(t, err)
	})

	t.Run("zero retries rejected", func(t *testing.T) {
		_, err := NewGenerator(mock.NewMockEmbedder(), testConfig(4, 32), WithMaxRetries(0))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}
