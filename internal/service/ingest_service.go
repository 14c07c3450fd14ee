package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"studyrag/internal/ai"
	"studyrag/internal/chunker"
	"studyrag/internal/extract"
	"studyrag/internal/filestore"
	"studyrag/internal/model"
	appErr "studyrag/internal/pkg/errors"
)

type DocumentStore interface {
	Create(ctx context.Context, title string) (*model.Document, error)
}

type ChunkStore interface {
	InsertChunks(ctx context.Context, documentID string, items []model.ChunkInsert) ([]model.Chunk, error)
}

type IngestTimings struct {
	ExtractionMs int64 `json:"extraction_ms"`
	ChunkingMs   int64 `json:"chunking_ms"`
	EmbeddingMs  int64 `json:"embedding_ms"`
	StorageMs    int64 `json:"storage_ms"`
}

type IngestResult struct {
	DocumentID string             `json:"document_id"`
	FileName   string             `json:"file_name"`
	PageCount  int                `json:"page_count"`
	ChunkCount int                `json:"chunk_count"`
	Info       model.DocumentInfo `json:"document_info"`
	Timings    IngestTimings      `json:"timings"`
}

// IngestService runs the ingestion pipeline: extract, chunk, embed, store.
// Every step is a hard gate; a failure aborts the rest with no retries.
// Rows committed before a mid-batch insert failure are not rolled back,
// so a failed ingestion can leave a partial document behind (the delete
// endpoint is the cleanup path).
type IngestService struct {
	extractors   *extract.Registry
	embedder     ai.IEmbedder
	documents    DocumentStore
	chunks       ChunkStore
	files        filestore.Store
	chunkSize    int
	chunkOverlap int
}

func NewIngestService(
	extractors *extract.Registry,
	embedder ai.IEmbedder,
	documents DocumentStore,
	chunks ChunkStore,
	files filestore.Store,
	chunkSize int,
	chunkOverlap int,
) *IngestService {
	return &IngestService{
		extractors:   extractors,
		embedder:     embedder,
		documents:    documents,
		chunks:       chunks,
		files:        files,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

func (s *IngestService) Ingest(ctx context.Context, fileName string, data []byte) (*IngestResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("file_name", fileName))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", appErr.ErrValidation)
	}

	var timings IngestTimings

	start := time.Now()
	extracted, err := s.extractors.Extract(fileName, data)
	timings.ExtractionMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	start = time.Now()
	normalized := chunker.Preprocess(extracted.Text)
	parts, err := chunker.Split(normalized, s.chunkSize, s.chunkOverlap)
	timings.ChunkingMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: document text is empty after normalization", appErr.ErrNoChunks)
	}

	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		texts = append(texts, part.Content)
	}
	start = time.Now()
	vectors, err := s.embedder.EmbedMany(ctx, texts, ai.TaskDocument)
	timings.EmbeddingMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	start = time.Now()
	doc, err := s.documents.Create(ctx, documentTitle(fileName, extracted.Info))
	if err != nil {
		return nil, fmt.Errorf("%w: create document: %w", appErr.ErrStorage, err)
	}
	inserts := make([]model.ChunkInsert, 0, len(parts))
	for i, part := range parts {
		inserts = append(inserts, model.ChunkInsert{Content: part.Content, Embedding: vectors[i]})
	}
	inserted, err := s.chunks.InsertChunks(ctx, doc.ID, inserts)
	timings.StorageMs = time.Since(start).Milliseconds()
	if err != nil {
		logger.Error("chunk insertion failed, partial document remains",
			zap.String("document_id", doc.ID),
			zap.Int("committed", len(inserted)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", appErr.ErrStorage, err)
	}

	s.archive(ctx, doc.ID, fileName, data)

	logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.Int("page_count", extracted.PageCount),
		zap.Int("chunk_count", len(inserted)),
		zap.Int64("extraction_ms", timings.ExtractionMs),
		zap.Int64("chunking_ms", timings.ChunkingMs),
		zap.Int64("embedding_ms", timings.EmbeddingMs),
		zap.Int64("storage_ms", timings.StorageMs),
	)

	return &IngestResult{
		DocumentID: doc.ID,
		FileName:   fileName,
		PageCount:  extracted.PageCount,
		ChunkCount: len(inserted),
		Info:       extracted.Info,
		Timings:    timings,
	}, nil
}

// archive keeps the original upload bytes; losing the archive never fails
// an ingestion that already committed its chunks.
func (s *IngestService) archive(ctx context.Context, documentID, fileName string, data []byte) {
	if s.files == nil {
		return
	}
	key := documentID + strings.ToLower(filepath.Ext(fileName))
	if err := s.files.Save(ctx, key, data); err != nil {
		logutil.GetLogger(ctx).Warn("failed to archive original file",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}
}

func documentTitle(fileName string, info model.DocumentInfo) string {
	if title := strings.TrimSpace(info.Title); title != "" {
		return title
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
