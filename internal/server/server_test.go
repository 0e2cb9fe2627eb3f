package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibot/internal/rag/pipeline"
	"medibot/pkg/logger"
)

type stubAsker struct {
	result *pipeline.QueryResult
	err    error
	gotQ   string
}

func (s *stubAsker) Ask(ctx context.Context, question string) (*pipeline.QueryResult, error) {
	s.gotQ = question
	return s.result, s.err
}

func newTestRouter(asker *stubAsker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.Init(logrus.ErrorLevel)
	api := NewAPI(asker, "medibot-rag", logger.New("server-test", ""))
	return NewRouter(api)
}

func doAsk(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAskReturnsAnswerAndPreview(t *testing.T) {
	asker := &stubAsker{result: &pipeline.QueryResult{Answer: "Rest and hydrate.", Context: "ctx"}}
	router := newTestRouter(asker)

	rec := doAsk(t, router, `{"question": "what helps a cold?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Rest and hydrate.", resp["answer"])
	assert.Equal(t, "ctx", resp["context_preview"])
	assert.Equal(t, "what helps a cold?", asker.gotQ)
}

func TestAskTruncatesLongPreview(t *testing.T) {
	longContext := strings.Repeat("x", 1500)
	asker := &stubAsker{result: &pipeline.QueryResult{Answer: "a", Context: longContext}}
	router := newTestRouter(asker)

	rec := doAsk(t, router, `{"question": "q"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, strings.Repeat("x", 1000)+"...", resp["context_preview"])
}

func TestAskPreviewTruncationKeepsValidUTF8(t *testing.T) {
	// 3-byte runes; a byte cut at 1000 would land mid-rune
	longContext := strings.Repeat("気", 400)
	asker := &stubAsker{result: &pipeline.QueryResult{Answer: "a", Context: longContext}}
	router := newTestRouter(asker)

	rec := doAsk(t, router, `{"question": "q"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, strings.Repeat("気", 333)+"...", resp["context_preview"])
	assert.True(t, utf8.ValidString(resp["context_preview"]))
}

func TestAskEmptyQuestion(t *testing.T) {
	router := newTestRouter(&stubAsker{})

	for _, body := range []string{`{"question": ""}`, `{"question": "   "}`, `{}`} {
		rec := doAsk(t, router, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
		assert.Contains(t, rec.Body.String(), "empty question")
	}
}

func TestAskMalformedBody(t *testing.T) {
	router := newTestRouter(&stubAsker{})

	rec := doAsk(t, router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskPipelineError(t *testing.T) {
	asker := &stubAsker{err: fmt.Errorf("failed to embed question: model not loaded")}
	router := newTestRouter(asker)

	rec := doAsk(t, router, `{"question": "q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model not loaded")
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubAsker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "medibot-rag", resp["index"])
}

func TestHome(t *testing.T) {
	router := newTestRouter(&stubAsker{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Medibot")
}
