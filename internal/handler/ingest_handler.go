package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"studyrag/internal/pkg/errcode"
	"studyrag/internal/pkg/response"
	"studyrag/internal/service"
)

type IngestHandler struct {
	ingest        *service.IngestService
	maxUploadSize int64
}

func NewIngestHandler(ingest *service.IngestService, maxUploadSize int64) *IngestHandler {
	return &IngestHandler{ingest: ingest, maxUploadSize: maxUploadSize}
}

func (h *IngestHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		response.Error(c, errcode.ErrInvalidFile, "file exceeds upload limit of "+formatUploadLimit(h.maxUploadSize))
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	var reader io.Reader = opened
	if h.maxUploadSize > 0 {
		reader = io.LimitReader(opened, h.maxUploadSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), file.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
