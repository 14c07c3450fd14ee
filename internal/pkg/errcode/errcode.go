package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrNotFound
	ErrTooMany
	ErrInternal
	ErrInvalidFile
	ErrExtractionFailed
	ErrEmptyDocument
	ErrDatabase
	ErrGenerationFailed
)
