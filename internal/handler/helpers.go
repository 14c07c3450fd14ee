package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/pkg/errcode"
	appErr "studyrag/internal/pkg/errors"
	"studyrag/internal/pkg/response"
)

// handleError maps pipeline sentinels onto wire codes. Validation errors
// are surfaced verbatim; storage and completion failures get a generic
// message with the original kept in logs only.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case appErr.IsValidation(err):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrExtraction):
		response.Error(c, errcode.ErrExtractionFailed, "could not extract text from document")
	case errors.Is(err, appErr.ErrNoChunks):
		response.Error(c, errcode.ErrEmptyDocument, "document contains no usable text")
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrStorage):
		response.Error(c, errcode.ErrDatabase, "database error")
	case errors.Is(err, appErr.ErrCompletion):
		response.Error(c, errcode.ErrGenerationFailed, "failed to generate answer")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
