package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstack/sift/core"
)

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("1000 chars with size 100 overlap 20", func(t *testing.T) {
		strategy, err := New(StrategySlidingWindow, WithChunkSize(100), WithChunkOverlap(20))
		require.NoError(t, err)

		text := strings.Repeat("abcdefghij", 100)
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)
		require.Len(t, chunks, 13)

		// Starts advance by size-overlap; consecutive chunks share 20 runes.
		for i, c := range chunks {
			assert.Equal(t, i*80, c.StartIndex)
			assert.Equal(t, i, c.ChunkID)
			if i < len(chunks)-1 {
				assert.Equal(t, 100, len([]rune(c.Text)))
				tail := c.Text[len(c.Text)-20:]
				head := chunks[i+1].Text[:20]
				assert.Equal(t, tail, head)
			}
		}

		last := chunks[len(chunks)-1]
		assert.Equal(t, 1000, last.EndIndex)
		assert.LessOrEqual(t, len([]rune(last.Text)), 100)
	})

	t.Run("text shorter than window yields one chunk", func(t *testing.T) {
		strategy, err := New("fixed", WithChunkSize(100), WithChunkOverlap(20))
		require.NoError(t, err)

		chunks, err := strategy.Chunk(ctx, "short text", nil)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "short text", chunks[0].Text)
		assert.Equal(t, 0, chunks[0].StartIndex)
		assert.Equal(t, 10, chunks[0].EndIndex)
	})

	t.Run("empty input yields no chunks", func(t *testing.T) {
		strategy, err := New(StrategySlidingWindow)
		require.NoError(t, err)

		chunks, err := strategy.Chunk(ctx, "", nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("every rune is covered", func(t *testing.T) {
		strategy, err := New(StrategySlidingWindow, WithChunkSize(7), WithChunkOverlap(3))
		require.NoError(t, err)

		text := "the quick brown fox jumps over the lazy dog"
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)

		runes := []rune(text)
		covered := make([]bool, len(runes))
		for _, c := range chunks {
			assert.Equal(t, string(runes[c.StartIndex:c.EndIndex]), c.Text)
			for i := c.StartIndex; i < c.EndIndex; i++ {
				covered[i] = true
			}
		}
		for i, ok := range covered {
			assert.True(t, ok, "rune %d not covered", i)
		}
	})

	t.Run("multibyte runes counted as characters", func(t *testing.T) {
		strategy, err := New(StrategySlidingWindow, WithChunkSize(4), WithChunkOverlap(1))
		require.NoError(t, err)

		chunks, err := strategy.Chunk(ctx, "日本語のテキスト", nil)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		assert.Equal(t, "日本語の", chunks[0].Text)
		assert.Equal(t, 4, chunks[0].EndIndex)
	})

	t.Run("metadata is copied and tagged", func(t *testing.T) {
		strategy, err := New(StrategySlidingWindow, WithChunkSize(5), WithChunkOverlap(0))
		require.NoError(t, err)

		metadata := map[string]string{core.MetaDocumentID: "doc-1"}
		chunks, err := strategy.Chunk(ctx, "hello world", metadata)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		chunks[0].Metadata["mutated"] = "yes"
		assert.NotContains(t, metadata, "mutated")
		assert.NotContains(t, chunks[1].Metadata, "mutated")

		for _, c := range chunks {
			assert.Equal(t, "doc-1", c.Metadata[core.MetaDocumentID])
			assert.Equal(t, StrategySlidingWindow, c.Metadata[core.MetaChunkingStrategy])
		}
	})
}
