package chunker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// Chunker converts a PDF document into an ordered sequence of overlapping
// text chunks, falling back to OCR for pages whose native text layer is
// too thin to be useful (scanned pages).
type Chunker struct {
	SizeWords    int
	OverlapWords int
	OCRThreshold int

	ocr interfaces.OCR
	log *logger.Logger
}

// New creates a Chunker. The OCR engine is optional; without one, scanned
// pages are skipped.
func New(sizeWords, overlapWords, ocrThreshold int, ocr interfaces.OCR, log *logger.Logger) (*Chunker, error) {
	if sizeWords <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", sizeWords)
	}
	if overlapWords < 0 || overlapWords >= sizeWords {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlapWords, sizeWords)
	}
	return &Chunker{
		SizeWords:    sizeWords,
		OverlapWords: overlapWords,
		OCRThreshold: ocrThreshold,
		ocr:          ocr,
		log:          log,
	}, nil
}

// ChunkPDF extracts every page of the PDF at path and splits it into
// chunks. A page whose OCR fallback fails is skipped, not fatal; an
// unreadable document is.
func (c *Chunker) ChunkPDF(ctx context.Context, path string) ([]schema.Chunk, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	source := filepath.Base(path)
	stem := strings.TrimSuffix(source, filepath.Ext(source))

	var chunks []schema.Chunk
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		text := c.pageText(ctx, reader, path, pageNum)
		chunks = append(chunks, c.splitPage(stem, source, pageNum, text)...)
	}

	return chunks, nil
}

// splitPage splits one page's text into whitespace-delimited word windows
// of SizeWords, each window advancing by SizeWords-OverlapWords so that
// consecutive chunks share OverlapWords words. The final chunk may be
// shorter; empty chunks are dropped.
func (c *Chunker) splitPage(stem, source string, page int, text string) []schema.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []schema.Chunk
	step := c.SizeWords - c.OverlapWords
	sequence := 0
	for start := 0; start < len(words); start += step {
		end := start + c.SizeWords
		if end > len(words) {
			end = len(words)
		}
		chunkText := strings.TrimSpace(strings.Join(words[start:end], " "))
		if chunkText != "" {
			chunks = append(chunks, schema.Chunk{
				ID:       schema.ChunkID(stem, page, sequence),
				Source:   source,
				Page:     page,
				Sequence: sequence,
				Text:     chunkText,
			})
		}
		sequence++
	}
	return chunks
}

// pageText extracts the native text layer for one page and resolves it
// against the OCR fallback.
func (c *Chunker) pageText(ctx context.Context, reader *pdf.Reader, path string, pageNum int) string {
	text := ""
	page := reader.Page(pageNum)
	if !page.V.IsNull() {
		extracted, err := page.GetPlainText(nil)
		if err != nil {
			c.log.Warn(fmt.Sprintf("Native text extraction failed for %s page %d: %v", filepath.Base(path), pageNum, err))
		} else {
			text = extracted
		}
	}
	return c.resolveText(ctx, text, path, pageNum)
}

// resolveText returns the usable text for one page: the native text layer
// when it clears the OCR threshold, otherwise the OCR result. A thin text
// layer indicates a scanned page, so once OCR is triggered its output
// replaces the native text entirely; an OCR failure or a missing engine
// leaves the page empty, and it is skipped.
func (c *Chunker) resolveText(ctx context.Context, native, path string, pageNum int) string {
	if len(strings.TrimSpace(native)) >= c.OCRThreshold {
		return native
	}

	if c.ocr == nil {
		c.log.Warn(fmt.Sprintf("Page %d of %s looks scanned and no OCR engine is configured, skipping", pageNum, filepath.Base(path)))
		return ""
	}
	recognized, err := c.ocr.Recognize(ctx, path, pageNum)
	if err != nil {
		c.log.Warn(fmt.Sprintf("OCR fallback failed for %s page %d: %v", filepath.Base(path), pageNum, err))
		return ""
	}
	return recognized
}
