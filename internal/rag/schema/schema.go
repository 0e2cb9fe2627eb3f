package schema

import "fmt"

const (
	// MetadataKeySource is the key for the origin document name.
	MetadataKeySource = "source"
	// MetadataKeyPage is the key for the 1-based page number.
	MetadataKeyPage = "page"
	// MetadataKeySequence is the key for the chunk's order within its page.
	MetadataKeySequence = "sequence"
	// MetadataKeyPreview is the key for the leading characters of the chunk text.
	MetadataKeyPreview = "preview"
)

// Chunk is a bounded span of a document's text, the unit of embedding and
// retrieval. Chunks are immutable once produced.
type Chunk struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
}

// ChunkID derives the stable chunk identifier from its coordinates, so
// re-running extraction over the same input produces the same ids.
func ChunkID(stem string, page, sequence int) string {
	return fmt.Sprintf("%s_p%d_c%d", stem, page, sequence)
}

// EmbeddingRecord pairs a chunk id with its vector and the metadata that
// travels into the index alongside it.
type EmbeddingRecord struct {
	ID       string                 `json:"id"`
	Vector   []float32              `json:"embedding"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Match is one query result from the vector index, normalized to a uniform
// shape regardless of how the index service represented it. Metadata is
// usually a field map but may be any JSON value the index stored, e.g. a
// plain string.
type Match struct {
	ID       string      `json:"id"`
	Score    float32     `json:"score"`
	Metadata interface{} `json:"metadata"`
}
