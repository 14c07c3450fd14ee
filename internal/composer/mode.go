package composer

import "strings"

// Mode is the requested answer shape, decided once from the question text.
type Mode int

const (
	ModeProse Mode = iota
	ModeFlashcards
	ModeQuiz
)

func (m Mode) String() string {
	switch m {
	case ModeFlashcards:
		return "flashcards"
	case ModeQuiz:
		return "quiz"
	default:
		return "prose"
	}
}

// Structured reports whether the mode demands the JSON output contract.
func (m Mode) Structured() bool {
	return m == ModeFlashcards || m == ModeQuiz
}

// DetectMode switches on case-insensitive substrings of the question.
// "flashcard" takes precedence when both keywords occur.
func DetectMode(question string) Mode {
	q := strings.ToLower(question)
	if strings.Contains(q, "flashcard") {
		return ModeFlashcards
	}
	if strings.Contains(q, "quiz") {
		return ModeQuiz
	}
	return ModeProse
}
