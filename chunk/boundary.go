package chunk

import (
	"context"

	"github.com/quillstack/sift/core"
)

// sentenceParagraph implements boundary-respecting chunking. Text is split on
// paragraph breaks first; paragraphs are accumulated into a chunk until the
// next one would exceed maxSize. A paragraph longer than maxSize is split at
// sentence boundaries, and a sentence longer than maxSize is force-split at
// rune width: chunks are never emitted oversized. Separators stay attached to
// the unit they terminate, so concatenating the chunks in order reproduces the
// input exactly.
type sentenceParagraph struct {
	maxSize int
}

var _ Strategy = (*sentenceParagraph)(nil)

func (s *sentenceParagraph) Name() string {
	return StrategySentenceParagraph
}

func (s *sentenceParagraph) Chunk(ctx context.Context, text string, metadata map[string]string) ([]core.Chunk, error) {
	if text == "" {
		return nil, nil
	}

	// Reduce the text to units no larger than maxSize, descending through
	// paragraph, sentence, and forced-width boundaries as needed.
	var units []string
	for _, para := range splitKeep(text, "\n\n") {
		if runeLen(para) <= s.maxSize {
			units = append(units, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if runeLen(sent) <= s.maxSize {
				units = append(units, sent)
				continue
			}
			units = append(units, forceSplit(sent, s.maxSize)...)
		}
	}

	texts, offsets := packUnits(units, s.maxSize)
	return buildChunks(s.Name(), texts, offsets, metadata), nil
}

// packUnits accumulates units into chunks of at most maxSize runes. A unit
// that does not fit flushes the running buffer and starts the next chunk.
// Units are assumed to concatenate to the original text, which keeps the
// returned rune offsets exact.
func packUnits(units []string, maxSize int) (texts []string, offsets []int) {
	var buf []rune
	cursor := 0
	bufStart := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		texts = append(texts, string(buf))
		offsets = append(offsets, bufStart)
		buf = nil
	}

	for _, unit := range units {
		r := []rune(unit)
		if len(buf) > 0 && len(buf)+len(r) > maxSize {
			flush()
		}
		if len(buf) == 0 {
			bufStart = cursor
		}
		buf = append(buf, r...)
		cursor += len(r)
	}
	flush()

	return texts, offsets
}
