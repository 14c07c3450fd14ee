// Package extract turns uploaded file bytes into plain text plus document
// metadata. Extractors are picked by file extension.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
)

type Result struct {
	Text      string
	PageCount int
	Info      model.DocumentInfo
}

type Extractor interface {
	Extensions() []string
	Extract(data []byte) (*Result, error)
}

type Registry struct {
	byExt map[string]Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Extract dispatches on the file extension of fileName. Files with no
// recoverable text fail with the extraction sentinel; that is a user
// problem (scanned/image-only input), not a system failure.
func (r *Registry) Extract(fileName string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", appErr.ErrExtraction, ext)
	}
	res, err := e.Extract(data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: document contains no readable text", appErr.ErrExtraction)
	}
	return res, nil
}
