package handler

import (
	"github.com/gin-gonic/gin"

	"studyrag/internal/model"
	"studyrag/internal/pkg/errcode"
	"studyrag/internal/pkg/response"
	"studyrag/internal/service"
)

type QueryHandler struct {
	query *service.QueryService
}

func NewQueryHandler(query *service.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k"`
}

type sourceResponse struct {
	ChunkID    string              `json:"chunk_id"`
	DocumentID string              `json:"document_id"`
	Content    string              `json:"content"`
	Similarity float64             `json:"similarity"`
	Metadata   model.ChunkMetadata `json:"metadata"`
}

type queryResponse struct {
	Answer      string               `json:"answer"`
	Sources     []sourceResponse     `json:"sources"`
	HasContext  bool                 `json:"has_context"`
	TotalTimeMs int64                `json:"total_time_ms"`
	Timings     service.QueryTimings `json:"timings"`
	TokenUsage  model.TokenUsage     `json:"token_usage"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.query.Answer(c.Request.Context(), req.Question, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}

	sources := make([]sourceResponse, 0, len(result.Answer.Sources))
	for _, src := range result.Answer.Sources {
		sources = append(sources, sourceResponse{
			ChunkID:    src.ID,
			DocumentID: src.DocumentID,
			Content:    src.Content,
			Similarity: src.SimilarityPercent(),
			Metadata: model.ChunkMetadata{
				ChunkIndex: src.ChunkIndex,
				CharCount:  src.CharCount,
			},
		})
	}
	response.Success(c, queryResponse{
		Answer:      result.Answer.Text,
		Sources:     sources,
		HasContext:  result.HasContext,
		TotalTimeMs: result.TotalTimeMs,
		Timings:     result.Timings,
		TokenUsage:  result.Answer.Usage,
	})
}
