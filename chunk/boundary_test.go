package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceParagraph(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks partition the input exactly", func(t *testing.T) {
		strategy, err := New(StrategySentenceParagraph, WithChunkSize(40))
		require.NoError(t, err)

		text := "First paragraph here.\n\nSecond one is a bit longer. It has two sentences.\n\nThird."
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		var sb strings.Builder
		for _, c := range chunks {
			sb.WriteString(c.Text)
		}
		assert.Equal(t, text, sb.String())
	})

	t.Run("no chunk exceeds max size", func(t *testing.T) {
		strategy, err := New("paragraph", WithChunkSize(30))
		require.NoError(t, err)

		text := "Short one. " + strings.Repeat("word ", 40) + "\n\nAnother paragraph. Done."
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c.Text)), 30)
		}
	})

	t.Run("oversized sentence is force split", func(t *testing.T) {
		strategy, err := New(StrategySentenceParagraph, WithChunkSize(10))
		require.NoError(t, err)

		text := strings.Repeat("x", 35)
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)
		require.Len(t, chunks, 4)
		for i, c := range chunks {
			if i < 3 {
				assert.Equal(t, 10, len(c.Text))
			}
		}
		assert.Equal(t, 5, len(chunks[3].Text))
	})

	t.Run("small paragraphs are packed together", func(t *testing.T) {
		strategy, err := New(StrategySentenceParagraph, WithChunkSize(200))
		require.NoError(t, err)

		chunks, err := strategy.Chunk(ctx, "One.\n\nTwo.\n\nThree.", nil)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "One.\n\nTwo.\n\nThree.", chunks[0].Text)
	})

	t.Run("offsets are rune accurate", func(t *testing.T) {
		strategy, err := New(StrategySentenceParagraph, WithChunkSize(12))
		require.NoError(t, err)

		text := "日本語です。 Second sentence. Third one here."
		chunks, err := strategy.Chunk(ctx, text, nil)
		require.NoError(t, err)

		runes := []rune(text)
		for _, c := range chunks {
			assert.Equal(t, string(runes[c.StartIndex:c.EndIndex]), c.Text)
		}
	})

	t.Run("empty input yields no chunks", func(t *testing.T) {
		strategy, err := New(StrategySentenceParagraph)
		require.NoError(t, err)

		chunks, err := strategy.Chunk(ctx, "", nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestSplitHelpers(t *testing.T) {
	t.Run("splitKeep preserves separators", func(t *testing.T) {
		parts := splitKeep("a\n\nb\n\nc", "\n\n")
		assert.Equal(t, []string{"a\n\n", "b\n\n", "c"}, parts)
		assert.Equal(t, "a\n\nb\n\nc", strings.Join(parts, ""))
	})

	t.Run("splitSentences keeps terminators", func(t *testing.T) {
		parts := splitSentences("One. Two! Three? Four")
		assert.Equal(t, []string{"One. ", "Two! ", "Three? ", "Four"}, parts)
	})

	t.Run("splitSentences treats newline as boundary", func(t *testing.T) {
		parts := splitSentences("line one\nline two")
		assert.Equal(t, []string{"line one\n", "line two"}, parts)
	})

	t.Run("forceSplit cuts at rune width", func(t *testing.T) {
		parts := forceSplit("日本語テキスト", 3)
		assert.Equal(t, []string{"日本語", "テキス", "ト"}, parts)
	})
}
