package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
)

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract pulls per-page text and the Info dictionary. The underlying
// parser panics on some malformed inputs; that is converted into the
// extraction sentinel.
func (e *PDFExtractor) Extract(data []byte) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: malformed pdf: %v", appErr.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}

	pageCount := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page does not sink the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return &Result{
		Text:      sb.String(),
		PageCount: pageCount,
		Info:      readPDFInfo(reader),
	}, nil
}

func readPDFInfo(reader *pdf.Reader) model.DocumentInfo {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return model.DocumentInfo{}
	}
	return model.DocumentInfo{
		Title:   info.Key("Title").Text(),
		Author:  info.Key("Author").Text(),
		Creator: info.Key("Creator").Text(),
	}
}
