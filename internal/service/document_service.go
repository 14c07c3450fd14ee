package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/repo"
)

// DocumentService is the management surface over ingested documents:
// listing and deletion (which cascades to chunks and is the manual
// cleanup path for partially ingested documents).
type DocumentService struct {
	documents *repo.DocumentRepo
}

func NewDocumentService(documents *repo.DocumentRepo) *DocumentService {
	return &DocumentService{documents: documents}
}

func (s *DocumentService) List(ctx context.Context) ([]repo.DocumentSummary, error) {
	return s.documents.List(ctx)
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("document deleted", zap.String("document_id", id))
	return nil
}
