package embedding

import (
	"encoding/json"
	"fmt"
)

// Providers disagree on where the vector lives in the response body, so
// parsing is an ordered list of shape strategies; the first one that
// matches wins. Supporting another provider shape means appending a
// strategy here, nothing downstream changes.
var shapeStrategies = []func(payload []byte) ([]float32, bool){
	parseDataList, // {"data": [{"embedding": [...]}, ...]}
	parseTopLevel, // {"embedding": [...]}
}

// ParseEmbedding extracts the embedding vector from a provider response
// body. An unrecognized shape is a parsing error carrying the payload,
// truncated for diagnostics.
func ParseEmbedding(payload []byte) ([]float32, error) {
	for _, parse := range shapeStrategies {
		if vec, ok := parse(payload); ok {
			return vec, nil
		}
	}
	return nil, fmt.Errorf("unexpected embedding response shape: %s", truncate(payload, 1000))
}

func parseDataList(payload []byte) ([]float32, bool) {
	var body struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, false
	}
	if len(body.Data) == 0 || len(body.Data[0].Embedding) == 0 {
		return nil, false
	}
	return body.Data[0].Embedding, true
}

func parseTopLevel(payload []byte) ([]float32, bool) {
	var body struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, false
	}
	if len(body.Embedding) == 0 {
		return nil, false
	}
	return body.Embedding, true
}

func truncate(payload []byte, max int) string {
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max])
}
