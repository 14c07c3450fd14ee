package errors

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrExtraction = errors.New("could not extract text")
	ErrEmptyInput = errors.New("empty input")
	ErrNoChunks   = errors.New("no chunks produced")
	ErrStorage    = errors.New("storage failed")
	ErrCompletion = errors.New("completion failed")
	ErrConfig     = errors.New("invalid configuration")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
