package sift

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/ai/mock"
	"github.com/quillstack/sift/ingest"
	"github.com/quillstack/sift/jobs"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vecs := make([][]float32, len(texts))
		for i := range texts {
			vecs[i] = []float32{1, 0, 0, 0, 0, 0, 0, 0}
		}
		return vecs, nil
	}

	engine, err := Open("",
		WithInMemory(),
		WithEmbedder(embedder),
		WithAIConfig(ai.NewConfig(ai.WithDimension(8))),
		WithChunking("sliding_window", 64, 8),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	result, err := engine.Ingest(ctx, "guide.txt",
		[]byte("sift indexes documents for hybrid retrieval"), nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.DocumentID)

	t.Run("query finds the document", func(t *testing.T) {
		results, err := engine.Query(ctx, "hybrid retrieval", ingest.DefaultQueryOptions())
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, result.DocumentID, results[0].Record.DocumentID)
	})

	t.Run("list shows the document", func(t *testing.T) {
		docs, total, err := engine.ListDocuments(ctx, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, docs, 1)
		assert.Equal(t, "guide.txt", docs[0].Filename)
	})

	t.Run("delete removes it", func(t *testing.T) {
		deleted, err := engine.DeleteDocument(ctx, result.DocumentID)
		require.NoError(t, err)
		assert.True(t, deleted)

		docs, total, err := engine.ListDocuments(ctx, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, docs)
	})
}

func TestEngineBatchJob(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	jobID, err := engine.IngestBatch(ctx, []ingest.Document{
		{Filename: "a.txt", Data: []byte("first")},
		{Filename: "b.bin", Data: []byte("unsupported")},
	})
	require.NoError(t, err)

	var job *jobs.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = engine.Job(ctx, jobID)
		return err == nil && job.Terminal()
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, jobs.StatusCompleted, job.Status)
	assert.Equal(t, 1, job.CompletedDocuments)
	assert.Equal(t, 1, job.FailedDocuments)
}

func TestOpenRejectsBadChunking(t *testing.T) {
	_, err := Open("", WithInMemory(),
		WithEmbedder(mock.NewMockEmbedder()),
		WithChunking("sliding_window", 10, 10))
	assert.Error(t, err)
}
