// Package composer turns retrieved chunks and a question into a grounded
// answer through the completion capability.
package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/ai"
	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
)

// FallbackAnswer is returned verbatim when retrieval finds nothing; no
// completion call is made in that case.
const FallbackAnswer = "I could not find relevant information in the uploaded documents to answer your question. Try uploading a document that covers this topic first."

const systemPrompt = `You are a study assistant. You answer strictly from the provided context excerpts.
If the context does not contain the answer, say so explicitly instead of guessing.`

const contextSeparator = "\n\n---\n\n"

type Options struct {
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

type Composer struct {
	completer ai.ICompleter
	opts      Options
}

func New(completer ai.ICompleter, opts Options) *Composer {
	return &Composer{completer: completer, opts: opts}
}

// Compose builds the grounded prompt for the detected answer mode, invokes
// the completer and post-processes structured output. Parse failures of
// structured output degrade to the raw model text; they never fail the
// call.
func (c *Composer) Compose(ctx context.Context, question string, retrieved []model.RetrievedChunk) (*model.Answer, error) {
	if len(retrieved) == 0 {
		return &model.Answer{Text: FallbackAnswer}, nil
	}

	mode := DetectMode(question)
	prompt := buildPrompt(question, mode, retrieved)

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	res, err := c.completer.Complete(ctx, ai.CompletionRequest{
		System:          systemPrompt,
		Prompt:          prompt,
		Temperature:     c.opts.Temperature,
		MaxOutputTokens: c.opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrCompletion, err)
	}

	text := strings.TrimSpace(res.Text)
	if mode.Structured() {
		if extracted, ok := extractStructured(text, mode); ok {
			text = extracted
		} else {
			logutil.GetLogger(ctx).Warn("structured output parse failed, returning raw text",
				zap.String("mode", mode.String()),
			)
		}
	}

	return &model.Answer{
		Text:    text,
		Sources: retrieved,
		Usage:   res.Usage,
	}, nil
}

func buildPrompt(question string, mode Mode, retrieved []model.RetrievedChunk) string {
	blocks := make([]string, 0, len(retrieved))
	for i, rc := range retrieved {
		blocks = append(blocks, fmt.Sprintf("[Source %d | similarity %.2f%%]\n%s",
			i+1, rc.SimilarityPercent(), rc.Chunk.Content))
	}
	contextBlock := strings.Join(blocks, contextSeparator)

	var sb strings.Builder
	sb.WriteString("CONTEXT:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nINSTRUCTIONS:\n")
	sb.WriteString("- Answer using ONLY the context above.\n")
	sb.WriteString("- If the context is insufficient, state that clearly.\n")
	switch mode {
	case ModeFlashcards:
		writeStructuredInstructions(&sb, "flashcards", "a term, concept or question from the context", "the corresponding explanation or answer")
	case ModeQuiz:
		writeStructuredInstructions(&sb, "quiz", "a quiz question testing understanding of the context", "the correct answer")
	}
	sb.WriteString("\nQUESTION:\n")
	sb.WriteString(question)
	return sb.String()
}

func writeStructuredInstructions(sb *strings.Builder, typeTag, questionDesc, answerDesc string) {
	fmt.Fprintf(sb, `- Respond with a single JSON object and nothing else: {"type": %q, "data": [{"question": "...", "answer": "..."}]}.
- Each "question" is %s; each "answer" is %s.
- Escape newlines inside string values as \n; do not emit literal newlines in strings.
- Do not wrap the JSON in markdown code fences.
`, typeTag, questionDesc, answerDesc)
}

type structuredCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type structuredPayload struct {
	Type string           `json:"type"`
	Data []structuredCard `json:"data"`
}

// extractStructured pulls the outermost {...} span out of text, tolerating
// code fences and surrounding prose, and validates the payload shape.
// It returns the canonical compact JSON on success.
func extractStructured(text string, mode Mode) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	var payload structuredPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return "", false
	}
	if payload.Type != mode.String() || len(payload.Data) == 0 {
		return "", false
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return string(canonical), true
}
