package schema

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"medibot/pkg/logger"
)

// WriteChunks writes chunk records as newline-delimited JSON. The file is
// written to a temp path and renamed, so an aborted run leaves no partial
// output behind.
func WriteChunks(path string, chunks []Chunk) error {
	return writeJSONL(path, len(chunks), func(enc *json.Encoder, i int) error {
		return enc.Encode(chunks[i])
	})
}

// ReadChunks reads chunk records from a newline-delimited JSON file.
// Malformed lines are skipped with a warning; a missing file is an error.
func ReadChunks(path string, log *logger.Logger) ([]Chunk, error) {
	var chunks []Chunk
	err := readJSONL(path, log, func(line []byte) error {
		var c Chunk
		if err := json.Unmarshal(line, &c); err != nil {
			return err
		}
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}

// WriteEmbeddings writes embedding records as newline-delimited JSON,
// atomically via temp file and rename.
func WriteEmbeddings(path string, records []EmbeddingRecord) error {
	return writeJSONL(path, len(records), func(enc *json.Encoder, i int) error {
		return enc.Encode(records[i])
	})
}

// ReadEmbeddings reads embedding records from a newline-delimited JSON file.
func ReadEmbeddings(path string, log *logger.Logger) ([]EmbeddingRecord, error) {
	var records []EmbeddingRecord
	err := readJSONL(path, log, func(line []byte) error {
		var r EmbeddingRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	return records, err
}

func writeJSONL(path string, n int, encode func(enc *json.Encoder, i int) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := encode(enc, i); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", tmp, err)
	}
	return nil
}

func readJSONL(path string, log *logger.Logger, decode func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := decode([]byte(line)); err != nil {
			if log != nil {
				log.Warn(fmt.Sprintf("Skipping malformed line %d in %s: %v", lineNo, filepath.Base(path), err))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return nil
}
