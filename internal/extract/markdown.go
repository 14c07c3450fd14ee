package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"studyrag/internal/model"
)

type MarkdownExtractor struct{}

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

func (e *MarkdownExtractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract strips markdown structure and keeps the visible text, block by
// block. The first level-1 heading becomes the document title.
func (e *MarkdownExtractor) Extract(data []byte) (*Result, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	var sb strings.Builder
	var title string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level == 1 && title == "" {
			title = string(h.Text(data))
		}
		block := blockText(node, data)
		if block == "" {
			continue
		}
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	return &Result{
		Text:      sb.String(),
		PageCount: 1,
		Info:      model.DocumentInfo{Title: title},
	}, nil
}

func blockText(n ast.Node, source []byte) string {
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		var sb strings.Builder
		for i := 0; i < fenced.Lines().Len(); i++ {
			line := fenced.Lines().At(i)
			sb.Write(line.Value(source))
		}
		return strings.TrimSpace(sb.String())
	}
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
