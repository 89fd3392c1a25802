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


package chunk

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillstack/sift/core"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
)

// Canonical strategy names.
const (
	StrategySlidingWindow     = "sliding_window"
	StrategySentenceParagraph = "sentence_paragraph"
	StrategySemantic          = "semantic"
)

// Strategy splits text into an ordered sequence of chunks. Implementations
// must return an empty sequence for empty input and must be safe for
// concurrent use.
type Strategy interface {
	// Name returns the canonical strategy name recorded in chunk metadata.
	Name() string

	// Chunk splits text into chunks, copying metadata into each chunk and
	// adding the chunking_strategy tag. Chunk IDs are 0-based and contiguous.
	Chunk(ctx context.Context, text string, metadata map[string]string) ([]core.Chunk, error)
}

// SplitterFunc produces semantic segment boundaries for the semantic strategy.
// The returned segments must concatenate, in order, to the input text.
type SplitterFunc func(ctx context.Context, text string) ([]string, error)

// Option configures strategy construction.
type Option func(*options)

type options struct {
	chunkSize    int
	chunkOverlap int
	splitter     SplitterFunc
}

// WithChunkSize sets the window size (fixed strategy) or the maximum chunk
// size (boundary and semantic strategies), measured in runes.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithChunkOverlap sets the overlap between consecutive fixed-window chunks,
// measured in runes. Ignored by the other strategies.
func WithChunkOverlap(overlap int) Option {
	return func(o *options) {
		o.chunkOverlap = overlap
	}
}

// WithSplitter sets the split signal for the semantic strategy.
func WithSplitter(fn SplitterFunc) Option {
	return func(o *options) {
		o.splitter = fn
	}
}

// aliases maps accepted strategy names to canonical ones.
var aliases = map[string]string{
	"sliding_window":     StrategySlidingWindow,
	"sliding":            StrategySlidingWindow,
	"fixed":              StrategySlidingWindow,
	"sentence_paragraph": StrategySentenceParagraph,
	"sentence":           StrategySentenceParagraph,
	"paragraph":          StrategySentenceParagraph,
	"semantic":           StrategySemantic,
}

// New creates a chunking strategy by name. It is the single validation point:
// unknown names and invalid parameters fail here, never at chunking time.
func New(name string, opts ...Option) (Strategy, error) {
	o := &options{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}

	canonical, ok := aliases[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}

	switch canonical {
	case StrategySlidingWindow:
		if o.chunkOverlap < 0 || o.chunkOverlap >= o.chunkSize {
			return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidOverlap, o.chunkSize, o.chunkOverlap)
		}
		return &slidingWindow{size: o.chunkSize, overlap: o.chunkOverlap}, nil
	case StrategySentenceParagraph:
		return &sentenceParagraph{maxSize: o.chunkSize}, nil
	default:
		if o.splitter == nil {
			return nil, ErrSplitterRequired
		}
		return &semantic{maxSize: o.chunkSize, splitter: o.splitter}, nil
	}
}

// buildChunks assembles the final chunk records from split texts and their
// rune offsets, copying metadata so chunks never share maps.
func buildChunks(strategyName string, texts []string, offsets []int, metadata map[string]string) []core.Chunk {
	chunks := make([]core.Chunk, 0, len(texts))
	for i, text := range texts {
		md := copyMetadata(metadata)
		md[core.MetaChunkingStrategy] = strategyName

		chunks = append(chunks, core.Chunk{
			Text:       text,
			ChunkID:    i,
			StartIndex: offsets[i],
			EndIndex:   offsets[i] + len([]rune(text)),
			Metadata:   md,
		})
	}
	return chunks
}

func copyMetadata(md map[string]string) map[string]string {
	out := make(map[string]string, len(md)+1)
	for k, v := range md {
		out[k] = v
	}
	return out
}
