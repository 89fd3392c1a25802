package chunk

import (
	"context"
	"math"
	"sort"

	"github.com/quillstack/sift/ai"
	"github.com/quillstack/sift/core"
)

// semantic delegates boundary choice to an externally provided split signal.
// Segments returned by the splitter are wrapped into the standard chunk shape;
// a pathologically long segment is still force-split so no chunk exceeds
// maxSize.
type semantic struct {
	maxSize  int
	splitter SplitterFunc
}

var _ Strategy = (*semantic)(nil)

func (s *semantic) Name() string {
	return StrategySemantic
}

func (s *semantic) Chunk(ctx context.Context, text string, metadata map[string]string) ([]core.Chunk, error) {
	if text == "" {
		return nil, nil
	}

	segments, err := s.splitter(ctx, text)
	if err != nil {
		return nil, err
	}

	var texts []string
	var offsets []int
	cursor := 0
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		for _, part := range forceSplit(segment, s.maxSize) {
			texts = append(texts, part)
			offsets = append(offsets, cursor)
			cursor += runeLen(part)
		}
	}

	return buildChunks(s.Name(), texts, offsets, metadata), nil
}

// EmbedderSplitter builds a SplitterFunc from an embedder. Sentences are
// embedded in one batch and adjacent-sentence cosine distances are computed;
// a split is placed wherever the distance exceeds the given percentile of all
// distances. percentile is clamped to [50, 100]; 95 mirrors the usual
// breakpoint default.
func EmbedderSplitter(embedder ai.Embedder, percentile float64) SplitterFunc {
	if percentile < 50 {
		percentile = 50
	}
	if percentile > 100 {
		percentile = 100
	}

	return func(ctx context.Context, text string) ([]string, error) {
		sentences := splitSentences(text)
		if len(sentences) <= 1 {
			return sentences, nil
		}

		vectors, err := embedder.EmbedTexts(ctx, sentences)
		if err != nil {
			return nil, err
		}

		distances := make([]float64, len(sentences)-1)
		for i := 0; i < len(sentences)-1; i++ {
			distances[i] = 1 - cosineSimilarity(vectors[i], vectors[i+1])
		}

		threshold := percentileOf(distances, percentile)

		var segments []string
		current := sentences[0]
		for i := 1; i < len(sentences); i++ {
			if distances[i-1] > threshold {
				segments = append(segments, current)
				current = sentences[i]
				continue
			}
			current += sentences[i]
		}
		segments = append(segments, current)

		return segments, nil
	}
}

func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// percentileOf returns the value at the given percentile of vals using
// nearest-rank selection. vals must be non-empty.
func percentileOf(vals []float64, percentile float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	rank := int(math.Ceil(percentile / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
