package chunk

import (
	"context"

	"github.com/quillstack/sift/core"
)

// slidingWindow implements fixed-size chunking with overlap. Every rune of the
// source appears in at least one chunk, and consecutive chunks share exactly
// `overlap` runes; the final window is clamped to the end of the text.
type slidingWindow struct {
	size    int
	overlap int
}

var _ Strategy = (*slidingWindow)(nil)

func (s *slidingWindow) Name() string {
	return StrategySlidingWindow
}

func (s *slidingWindow) Chunk(ctx context.Context, text string, metadata map[string]string) ([]core.Chunk, error) {
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := s.size - s.overlap

	var texts []string
	var offsets []int
	for start := 0; ; start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}

		texts = append(texts, string(runes[start:end]))
		offsets = append(offsets, start)

		if end == len(runes) {
			break
		}
	}

	return buildChunks(s.Name(), texts, offsets, metadata), nil
}
