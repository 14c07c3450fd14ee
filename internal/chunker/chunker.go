// Package chunker splits normalized text into overlapping fixed-size
// windows. Boundaries are character-based, not sentence-aware: a window may
// split words, which downstream ranking tolerates.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	appErr "studyrag/internal/pkg/errors"
)

type Chunk struct {
	Content   string
	Index     int
	StartChar int
	EndChar   int
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Preprocess normalizes raw extracted text: CRLF to LF, runs of three or
// more newlines collapsed to two, surrounding whitespace trimmed.
// Preprocess is idempotent.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Split slides a window of chunkSize characters over text, advancing by
// chunkSize-overlap each step. The terminal window is emitted even when
// shorter than chunkSize; windows that are blank after trimming are
// skipped. Every character of text is covered by at least one window.
//
// Split assumes text is already normalized; callers go through Preprocess
// first. Empty or whitespace-only text yields no chunks and no error.
func Split(text string, chunkSize, overlap int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", appErr.ErrConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", appErr.ErrConfig, overlap, chunkSize)
	}
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	start := 0
	index := 0
	for {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, Chunk{
				Content:   content,
				Index:     index,
				StartChar: start,
				EndChar:   end,
			})
			index++
		}
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}
