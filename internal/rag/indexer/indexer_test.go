package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// fakeIndex is an in-memory stand-in for the vector index service.
type fakeIndex struct {
	dims       map[string]int                  // existing indexes and their (reported) dimension
	content    map[string]map[string][]float32 // index -> id -> vector
	batchSizes map[string][]int                // upsert batch sizes per index
	failAfter  int                             // fail the nth upsert call (1-based), 0 = never
	upserts    int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		dims:       map[string]int{},
		content:    map[string]map[string][]float32{},
		batchSizes: map[string][]int{},
	}
}

func (f *fakeIndex) ListIndexes(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.dims {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeIndex) Dimension(ctx context.Context, name string) (int, error) {
	return f.dims[name], nil
}

func (f *fakeIndex) Create(ctx context.Context, name string, dimension int) error {
	f.dims[name] = dimension
	f.content[name] = map[string][]float32{}
	return nil
}

func (f *fakeIndex) Upsert(ctx context.Context, name string, records []schema.EmbeddingRecord) error {
	f.upserts++
	if f.failAfter > 0 && f.upserts >= f.failAfter {
		return fmt.Errorf("upsert rejected")
	}
	if f.content[name] == nil {
		f.content[name] = map[string][]float32{}
	}
	for _, rec := range records {
		f.content[name][rec.ID] = rec.Vector
	}
	f.batchSizes[name] = append(f.batchSizes[name], len(records))
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, name string, vector []float32, topK int) ([]schema.Match, error) {
	return nil, nil
}

func testLogger() *logger.Logger {
	logger.Init(logrus.ErrorLevel)
	return logger.New("indexer-test", "")
}

func makeRecords(n, dim int) []schema.EmbeddingRecord {
	records := make([]schema.EmbeddingRecord, n)
	for i := range records {
		vec := make([]float32, dim)
		vec[0] = float32(i)
		records[i] = schema.EmbeddingRecord{
			ID:     fmt.Sprintf("doc_p1_c%d", i),
			Vector: vec,
			Metadata: map[string]interface{}{
				"source": "doc.pdf", "page": 1, "sequence": i, "preview": "text",
			},
		}
	}
	return records
}

func TestReconcileCreatesMissingIndex(t *testing.T) {
	f := newFakeIndex()
	ix := New(f, 100, testLogger())

	name, err := ix.ReconcileAndUpload(context.Background(), makeRecords(5, 8), "medibot-rag")
	require.NoError(t, err)
	assert.Equal(t, "medibot-rag", name)
	assert.Equal(t, 8, f.dims["medibot-rag"])
	assert.Len(t, f.content["medibot-rag"], 5)
}

func TestReconcileReusesMatchingIndex(t *testing.T) {
	f := newFakeIndex()
	f.dims["medibot-rag"] = 8
	f.content["medibot-rag"] = map[string][]float32{}
	ix := New(f, 100, testLogger())

	name, err := ix.ReconcileAndUpload(context.Background(), makeRecords(3, 8), "medibot-rag")
	require.NoError(t, err)
	assert.Equal(t, "medibot-rag", name)
}

func TestReconcileRedirectsOnDimensionMismatch(t *testing.T) {
	f := newFakeIndex()
	f.dims["medibot-rag"] = 1536
	f.content["medibot-rag"] = map[string][]float32{"keep": {1}}
	ix := New(f, 100, testLogger())

	name, err := ix.ReconcileAndUpload(context.Background(), makeRecords(4, 384), "medibot-rag")
	require.NoError(t, err)
	assert.Equal(t, "medibot-rag-d384", name)

	// the existing index is untouched
	assert.Equal(t, 1536, f.dims["medibot-rag"])
	assert.Equal(t, map[string][]float32{"keep": {1}}, f.content["medibot-rag"])
	assert.Len(t, f.content["medibot-rag-d384"], 4)
}

func TestReconcileRedirectsWhenDimensionUnknown(t *testing.T) {
	f := newFakeIndex()
	f.dims["medibot-rag"] = 0 // exists, but introspection yields nothing
	ix := New(f, 100, testLogger())

	name, err := ix.ReconcileAndUpload(context.Background(), makeRecords(2, 384), "medibot-rag")
	require.NoError(t, err)
	assert.Equal(t, "medibot-rag-d384", name)
	assert.Nil(t, f.content["medibot-rag"])
}

func TestUploadBatches(t *testing.T) {
	f := newFakeIndex()
	ix := New(f, 100, testLogger())

	_, err := ix.ReconcileAndUpload(context.Background(), makeRecords(250, 4), "idx")
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, f.batchSizes["idx"])
	assert.Len(t, f.content["idx"], 250)
}

func TestUploadIdempotent(t *testing.T) {
	f := newFakeIndex()
	ix := New(f, 100, testLogger())
	records := makeRecords(42, 4)

	_, err := ix.ReconcileAndUpload(context.Background(), records, "idx")
	require.NoError(t, err)
	first := f.content["idx"]

	_, err = ix.ReconcileAndUpload(context.Background(), records, "idx")
	require.NoError(t, err)
	assert.Equal(t, first, f.content["idx"])
	assert.Len(t, f.content["idx"], 42)
}

func TestBatchFailurePropagatesKeepingEarlierBatches(t *testing.T) {
	f := newFakeIndex()
	f.failAfter = 2
	ix := New(f, 100, testLogger())

	_, err := ix.ReconcileAndUpload(context.Background(), makeRecords(250, 4), "idx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch starting at record 100")
	// the first batch stays committed
	assert.Len(t, f.content["idx"], 100)
}

func TestEmptyInputRejected(t *testing.T) {
	ix := New(newFakeIndex(), 100, testLogger())

	_, err := ix.ReconcileAndUpload(context.Background(), nil, "idx")
	assert.Error(t, err)

	_, err = ix.ReconcileAndUpload(context.Background(), []schema.EmbeddingRecord{{ID: "a"}}, "idx")
	assert.Error(t, err)
}
