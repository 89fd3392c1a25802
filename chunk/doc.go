// Package chunk splits document text into retrievable units.
//
// Three strategies are provided:
//   - Fixed sliding-window chunking with a configurable overlap
//   - Boundary-respecting chunking along paragraph and sentence breaks
//   - Semantic chunking driven by an externally supplied split signal
//
// All strategies produce the same Chunk shape with contiguous 0-based chunk
// IDs and a chunking_strategy metadata tag. Strategies are constructed through
// the New factory, which is the single validation point for strategy names and
// parameters.
package chunk
