package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ChunkingConfig controls how PDF pages are split into chunks.
type ChunkingConfig struct {
	PDFDir       string // directory scanned for *.pdf files
	ChunksFile   string // output path for the chunk records
	SizeWords    int    // words per chunk
	OverlapWords int    // words shared between consecutive chunks
	OCRThreshold int    // trimmed chars below which a page goes to OCR
	OCRDPI       int    // render resolution for OCR page images
	PopplerPath  string // optional explicit poppler binary directory
}

// EmbeddingConfig selects and configures the embedding model.
type EmbeddingConfig struct {
	APIKey         string        // remote provider credential; empty selects the local model
	EndpointURL    string        // remote provider embeddings endpoint
	Model          string        // remote provider model name
	LocalModel     string        // ollama embedding model used when no credential is set
	OllamaURL      string        // ollama server base URL
	MaxRetries     int           // transient-failure retry cap
	RequestTimeout time.Duration // per-call HTTP timeout
	PacingDelay    time.Duration // sleep between consecutive embedding calls
	ChunksFile     string        // input chunk records
	OutFile        string        // output embedding records
	PreviewChars   int           // metadata preview length
}

// IndexConfig configures the vector index service and the upload stage.
type IndexConfig struct {
	Address        string // Milvus service address
	Name           string // target index (collection) name
	BatchSize      int    // records per upsert call
	EmbeddingsFile string // input embedding records
}

// ServerConfig configures the query-time HTTP service.
type ServerConfig struct {
	Port            int
	TopK            int
	MaxContextChars int
	GenModel        string        // ollama generation model
	OllamaURL       string        // ollama server base URL
	GenTimeout      time.Duration // generation call timeout
}

// Config is the full environment-backed configuration surface.
type Config struct {
	Chunking  ChunkingConfig
	Embedding EmbeddingConfig
	Index     IndexConfig
	Server    ServerConfig
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Chunking: ChunkingConfig{
			PDFDir:       getEnv("PDF_DIR", "pdfs"),
			ChunksFile:   getEnv("CHUNKS_FILE", "chunks.jsonl"),
			SizeWords:    getEnvInt("CHUNK_SIZE_WORDS", 300),
			OverlapWords: getEnvInt("CHUNK_OVERLAP_WORDS", 50),
			OCRThreshold: getEnvInt("OCR_THRESHOLD_CHARS", 60),
			OCRDPI:       getEnvInt("PDF_DPI_FOR_OCR", 200),
			PopplerPath:  getEnv("POPPLER_PATH", ""),
		},
		Embedding: EmbeddingConfig{
			APIKey:         getEnv("EMBED_API_KEY", ""),
			EndpointURL:    getEnv("EMBED_API_URL", "https://api.groq.ai/v1/embeddings"),
			Model:          getEnv("EMBED_MODEL", "embed-english-v1"),
			LocalModel:     getEnv("LOCAL_EMBED_MODEL", "all-minilm"),
			OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434"),
			MaxRetries:     getEnvInt("MAX_RETRIES", 3),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
			PacingDelay:    getEnvDuration("BATCH_SLEEP", 80*time.Millisecond),
			ChunksFile:     getEnv("CHUNKS_FILE", "chunks.jsonl"),
			OutFile:        getEnv("EMBEDDINGS_FILE", "embeddings.jsonl"),
			PreviewChars:   getEnvInt("PREVIEW_CHARS", 300),
		},
		Index: IndexConfig{
			Address:        getEnv("MILVUS_ADDRESS", "localhost:19530"),
			Name:           getEnv("VECTOR_INDEX", "medibot-rag"),
			BatchSize:      getEnvInt("BATCH_SIZE", 100),
			EmbeddingsFile: getEnv("EMBEDDINGS_FILE", "embeddings.jsonl"),
		},
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 5000),
			TopK:            getEnvInt("TOP_K", 5),
			MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 2500),
			GenModel:        getEnv("OLLAMA_MODEL", "llama3.1:8b"),
			OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
			GenTimeout:      getEnvDuration("OLLAMA_TIMEOUT", 120*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts either a Go duration string ("90s") or a bare
// number of seconds, matching the original deployment's env files.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
