package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"studyrag/internal/model"
	"studyrag/internal/pkg/dbutil"
	appErr "studyrag/internal/pkg/errors"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertError reports which chunk of a batch failed. Chunks before Index
// are already committed and stay committed; callers decide whether to
// clean up the partial document.
type InsertError struct {
	Index int
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert chunk %d: %v", e.Index, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// InsertChunks writes chunks one by one in input order, assigning
// chunkIndex from the slice position. On the first failure it stops and
// returns an *InsertError; there is no rollback of earlier rows.
func (r *ChunkRepo) InsertChunks(ctx context.Context, documentID string, items []model.ChunkInsert) ([]model.Chunk, error) {
	const query = `
		INSERT INTO document_chunks (id, document_id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().Unix()
	inserted := make([]model.Chunk, 0, len(items))
	for i, item := range items {
		chunk := model.Chunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Content:    item.Content,
			Embedding:  item.Embedding,
			ChunkIndex: i,
			CharCount:  len([]rune(item.Content)),
			CreatedAt:  now,
		}
		metadata, err := json.Marshal(model.ChunkMetadata{
			ChunkIndex: chunk.ChunkIndex,
			CharCount:  chunk.CharCount,
		})
		if err != nil {
			return inserted, &InsertError{Index: i, Err: err}
		}
		_, err = r.db.ExecContext(ctx, query,
			chunk.ID,
			chunk.DocumentID,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			metadata,
			chunk.CreatedAt,
		)
		if err != nil {
			if dbutil.IsConflict(err) {
				err = fmt.Errorf("%w: duplicate chunk index", appErr.ErrConflict)
			}
			return inserted, &InsertError{Index: i, Err: err}
		}
		inserted = append(inserted, chunk)
	}
	return inserted, nil
}

// ListWithEmbeddings returns every chunk that has an embedding, across all
// documents, in a stable order (insertion time, then chunk index). The
// retriever relies on that order for deterministic tie-breaking.
func (r *ChunkRepo) ListWithEmbeddings(ctx context.Context) ([]model.Chunk, error) {
	const query = `
		SELECT id, document_id, content, embedding, metadata, created_at
		FROM document_chunks
		WHERE embedding IS NOT NULL
		ORDER BY created_at ASC, (metadata->>'chunkIndex')::int ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		var embedding pgvector.Vector
		var metadata []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &embedding, &metadata, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		chunk.Embedding = embedding.Slice()
		var meta model.ChunkMetadata
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, err
		}
		chunk.ChunkIndex = meta.ChunkIndex
		chunk.CharCount = meta.CharCount
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
