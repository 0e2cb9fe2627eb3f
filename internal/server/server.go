package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medibot/internal/rag/contextbuilder"
	"medibot/internal/rag/pipeline"
	"medibot/pkg/logger"
)

const previewLimit = 1000

// Asker answers a question against the indexed documents.
type Asker interface {
	Ask(ctx context.Context, question string) (*pipeline.QueryResult, error)
}

// API provides the HTTP handlers for the query service.
type API struct {
	pipeline  Asker
	indexName string
	log       *logger.Logger
}

// NewAPI creates the handler set.
func NewAPI(p Asker, indexName string, log *logger.Logger) *API {
	return &API{pipeline: p, indexName: indexName, log: log}
}

// TraceMiddleware assigns each request a trace id for log correlation.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("traceID", uuid.NewString())
		c.Next()
	}
}

// HomeHandler serves a minimal landing page pointing at the API.
func (a *API) HomeHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, "<h3>Medibot RAG</h3><p>POST a question to /ask.</p>")
}

// AskHandler answers a question. Body: {"question": "<text>"}. Response:
// {"answer": "...", "context_preview": "..."} or an error payload.
func (a *API) AskHandler(c *gin.Context) {
	var payload struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	question := strings.TrimSpace(payload.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty question"})
		return
	}

	log := logger.New("query", c.GetString("traceID"))
	log.Info(fmt.Sprintf("Answering question (%d chars)", len(question)))

	result, err := a.pipeline.Ask(c.Request.Context(), question)
	if err != nil {
		log.Error(fmt.Sprintf("Query pipeline failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	preview := result.Context
	if len(preview) > previewLimit {
		preview = contextbuilder.Truncate(preview, previewLimit) + "..."
	}
	c.JSON(http.StatusOK, gin.H{"answer": result.Answer, "context_preview": preview})
}

// HealthHandler reports liveness and the index being served.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "index": a.indexName})
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), TraceMiddleware())

	router.GET("/", api.HomeHandler)
	router.POST("/ask", api.AskHandler)
	router.GET("/health", api.HealthHandler)
	return router
}
