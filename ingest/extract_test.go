package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstack/sift/core"
)

func TestExtractText(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		info := &core.FileInfo{Filename: "notes.txt", DocumentType: "txt"}
		text, err := ExtractText([]byte("hello world"), info)
		require.NoError(t, err)
		assert.Equal(t, "hello world", text)
	})

	t.Run("markdown passes through", func(t *testing.T) {
		info := &core.FileInfo{Filename: "readme.md", DocumentType: "md"}
		text, err := ExtractText([]byte("# Title\n\nbody"), info)
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nbody", text)
	})

	t.Run("invalid utf-8 rejected", func(t *testing.T) {
		info := &core.FileInfo{Filename: "bad.txt", DocumentType: "txt"}
		_, err := ExtractText([]byte{0xff, 0xfe, 0xfd}, info)
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("json is re-indented", func(t *testing.T) {
		info := &core.FileInfo{Filename: "data.json", DocumentType: "json"}
		text, err := ExtractText([]byte(`{"a":1,"b":[2,3]}`), info)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}", text)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		info := &core.FileInfo{Filename: "data.json", DocumentType: "json"}
		_, err := ExtractText([]byte(`{"a":`), info)
		assert.ErrorIs(t, err, core.ErrMalformedJSON)
	})

	t.Run("garbage pdf rejected", func(t *testing.T) {
		info := &core.FileInfo{Filename: "doc.pdf", DocumentType: "pdf"}
		_, err := ExtractText([]byte("not a pdf at all"), info)
		assert.Error(t, err)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		info := &core.FileInfo{Filename: "a.xyz", DocumentType: "xyz"}
		_, err := ExtractText([]byte("data"), info)
		assert.ErrorIs(t, err, core.ErrUnsupportedType)
	})
}
