package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibot/pkg/logger"
)

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("schema-test", "")
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "handbook_p3_c0", ChunkID("handbook", 3, 0))
	assert.Equal(t, "dosage guide_p12_c7", ChunkID("dosage guide", 12, 7))
}

func TestChunksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	chunks := []Chunk{
		{ID: "doc_p1_c0", Source: "doc.pdf", Page: 1, Sequence: 0, Text: "first"},
		{ID: "doc_p2_c0", Source: "doc.pdf", Page: 2, Sequence: 0, Text: "second"},
	}

	require.NoError(t, WriteChunks(path, chunks))
	got, err := ReadChunks(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, chunks, got)

	// no stray temp file after a successful write
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestEmbeddingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")
	records := []EmbeddingRecord{
		{
			ID:     "doc_p1_c0",
			Vector: []float32{0.1, 0.2, 0.3},
			Metadata: map[string]interface{}{
				"source":  "doc.pdf",
				"preview": "first",
			},
		},
	}

	require.NoError(t, WriteEmbeddings(path, records))
	got, err := ReadEmbeddings(path, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc_p1_c0", got[0].ID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0].Vector)
	assert.Equal(t, "doc.pdf", got[0].Metadata["source"])
}

func TestReadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	content := `{"id":"a_p1_c0","source":"a.pdf","page":1,"sequence":0,"text":"ok"}
not json at all

{"id":"a_p1_c1","source":"a.pdf","page":1,"sequence":1,"text":"also ok"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadChunks(path, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a_p1_c0", got[0].ID)
	assert.Equal(t, "a_p1_c1", got[1].ID)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadChunks(filepath.Join(t.TempDir(), "absent.jsonl"), testLogger())
	require.Error(t, err)
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	require.NoError(t, WriteChunks(path, []Chunk{{ID: "old_p1_c0", Text: "old"}}))
	require.NoError(t, WriteChunks(path, []Chunk{{ID: "new_p1_c0", Text: "new"}}))

	got, err := ReadChunks(path, testLogger())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new_p1_c0", got[0].ID)
}
