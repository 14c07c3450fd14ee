package extract

import (
	"fmt"
	"unicode/utf8"

	appErr "studyrag/internal/pkg/errors"
)

type PlainExtractor struct{}

func NewPlainExtractor() *PlainExtractor {
	return &PlainExtractor{}
}

func (e *PlainExtractor) Extensions() []string {
	return []string{".txt", ".text"}
}

func (e *PlainExtractor) Extract(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: file is not valid utf-8 text", appErr.ErrExtraction)
	}
	return &Result{Text: string(data), PageCount: 1}, nil
}
