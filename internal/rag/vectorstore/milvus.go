package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

const (
	// Schema fields of an index collection.
	FieldID        = "id"
	FieldEmbedding = "embedding"
	FieldSource    = "source"
	FieldPage      = "page"
	FieldSequence  = "sequence"
	FieldPreview   = "preview"

	previewMaxLength = 2048
	idMaxLength      = 512
)

// MilvusIndex adapts the milvus-sdk-go client to the Index contract. Each
// index is one Milvus collection with a fixed chunk schema and a
// cosine-similarity vector index.
type MilvusIndex struct {
	log    *logger.Logger
	client client.Client
}

// NewMilvusIndex connects to a Milvus service.
func NewMilvusIndex(ctx context.Context, address string, log *logger.Logger) (*MilvusIndex, error) {
	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", address, err)
	}
	return &MilvusIndex{log: log, client: c}, nil
}

// Close releases the underlying connection.
func (s *MilvusIndex) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// ListIndexes returns the names of all collections on the service.
func (s *MilvusIndex) ListIndexes(ctx context.Context) ([]string, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	names := make([]string, 0, len(collections))
	for _, coll := range collections {
		names = append(names, coll.Name)
	}
	return names, nil
}

// dimStrategies are the ordered best-effort lookups for a collection's
// vector dimensionality. The service's introspection is not uniform across
// deployments, so each strategy is tried in turn and the first hit wins.
var dimStrategies = []func(*entity.Collection) int{
	dimFromEmbeddingField,
	dimFromAnyVectorField,
}

// Dimension reports the vector dimensionality of the named collection.
// (0, nil) means the dimension could not be determined; callers treat that
// as a distinct outcome rather than an error.
func (s *MilvusIndex) Dimension(ctx context.Context, name string) (int, error) {
	coll, err := s.client.DescribeCollection(ctx, name)
	if err != nil || coll == nil || coll.Schema == nil {
		return 0, nil
	}
	for _, strategy := range dimStrategies {
		if dim := strategy(coll); dim > 0 {
			return dim, nil
		}
	}
	return 0, nil
}

func dimFromEmbeddingField(coll *entity.Collection) int {
	for _, field := range coll.Schema.Fields {
		if field.Name == FieldEmbedding {
			return parseDimParam(field)
		}
	}
	return 0
}

func dimFromAnyVectorField(coll *entity.Collection) int {
	for _, field := range coll.Schema.Fields {
		if field.DataType == entity.FieldTypeFloatVector {
			if dim := parseDimParam(field); dim > 0 {
				return dim
			}
		}
	}
	return 0
}

func parseDimParam(field *entity.Field) int {
	if raw, ok := field.TypeParams[entity.TypeParamDim]; ok {
		if dim, err := strconv.Atoi(raw); err == nil {
			return dim
		}
	}
	return 0
}

// Create provisions a collection with the chunk schema, a cosine IVF_FLAT
// index on the embedding field, and loads it for querying.
func (s *MilvusIndex) Create(ctx context.Context, name string, dimension int) error {
	collSchema := entity.NewSchema().
		WithName(name).
		WithDescription("medibot chunk embeddings").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(idMaxLength).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dimension))).
		WithField(entity.NewField().WithName(FieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(idMaxLength)).
		WithField(entity.NewField().WithName(FieldPage).WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName(FieldSequence).WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName(FieldPreview).WithDataType(entity.FieldTypeVarChar).WithMaxLength(previewMaxLength))

	if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	if err := s.client.CreateIndex(ctx, name, FieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create vector index on %s: %w", name, err)
	}
	if err := s.client.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	return nil
}

// Upsert inserts or replaces the given records by id in a single call.
func (s *MilvusIndex) Upsert(ctx context.Context, name string, records []schema.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Vector)
	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	sources := make([]string, len(records))
	pages := make([]int64, len(records))
	sequences := make([]int64, len(records))
	previews := make([]string, len(records))

	for i, rec := range records {
		ids[i] = rec.ID
		vectors[i] = rec.Vector
		sources[i] = metaString(rec.Metadata, schema.MetadataKeySource)
		pages[i] = metaInt(rec.Metadata, schema.MetadataKeyPage)
		sequences[i] = metaInt(rec.Metadata, schema.MetadataKeySequence)
		previews[i] = clip(metaString(rec.Metadata, schema.MetadataKeyPreview), previewMaxLength)
	}

	_, err := s.client.Upsert(ctx, name, "" /* default partition */,
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldEmbedding, dim, vectors),
		entity.NewColumnVarChar(FieldSource, sources),
		entity.NewColumnInt64(FieldPage, pages),
		entity.NewColumnInt64(FieldSequence, sequences),
		entity.NewColumnVarChar(FieldPreview, previews),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %d records into %s: %w", len(records), name, err)
	}
	return nil
}

// Query searches the collection for the topK nearest neighbors and
// normalizes the column-oriented results into Match records. Missing
// output fields default to empty values.
func (s *MilvusIndex) Query(ctx context.Context, name string, vector []float32, topK int) ([]schema.Match, error) {
	if err := s.client.LoadCollection(ctx, name, false); err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{FieldID, FieldSource, FieldPage, FieldSequence, FieldPreview}

	results, err := s.client.Search(
		ctx, name, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", name, err)
	}

	var matches []schema.Match
	for _, res := range results {
		matches = append(matches, matchesFromResult(res)...)
	}
	return matches, nil
}

// matchesFromResult flattens one search result's columns into Match
// records, tolerating absent or mistyped columns.
func matchesFromResult(res client.SearchResult) []schema.Match {
	findColumn := func(name string) entity.Column {
		for _, field := range res.Fields {
			if field.Name() == name {
				return field
			}
		}
		return nil
	}

	var idData, sourceData, previewData []string
	var pageData, sequenceData []int64
	if col, ok := findColumn(FieldID).(*entity.ColumnVarChar); ok {
		idData = col.Data()
	}
	if col, ok := findColumn(FieldSource).(*entity.ColumnVarChar); ok {
		sourceData = col.Data()
	}
	if col, ok := findColumn(FieldPreview).(*entity.ColumnVarChar); ok {
		previewData = col.Data()
	}
	if col, ok := findColumn(FieldPage).(*entity.ColumnInt64); ok {
		pageData = col.Data()
	}
	if col, ok := findColumn(FieldSequence).(*entity.ColumnInt64); ok {
		sequenceData = col.Data()
	}

	matches := make([]schema.Match, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		meta := map[string]interface{}{}
		if i < len(sourceData) {
			meta[schema.MetadataKeySource] = sourceData[i]
		}
		if i < len(pageData) {
			meta[schema.MetadataKeyPage] = pageData[i]
		}
		if i < len(sequenceData) {
			meta[schema.MetadataKeySequence] = sequenceData[i]
		}
		if i < len(previewData) {
			meta[schema.MetadataKeyPreview] = previewData[i]
		}

		m := schema.Match{Metadata: meta}
		if i < len(idData) {
			m.ID = idData[i]
		}
		if i < len(res.Scores) {
			m.Score = res.Scores[i]
		}
		matches = append(matches, m)
	}
	return matches
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaInt reads a numeric metadata value; JSON decoding delivers numbers
// as float64.
func metaInt(meta map[string]interface{}, key string) int64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ interfaces.Index = (*MilvusIndex)(nil)
