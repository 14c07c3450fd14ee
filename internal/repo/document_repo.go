package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"

	"studyrag/internal/model"
	"studyrag/internal/pkg/dbutil"
	appErr "studyrag/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, title string) (*model.Document, error) {
	doc := &model.Document{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().Unix(),
	}
	data := map[string]interface{}{
		"id":         doc.ID,
		"title":      doc.Title,
		"created_at": doc.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*model.Document, error) {
	sqlStr, args, err := builder.BuildSelect("documents",
		map[string]interface{}{"id": id},
		[]string{"id", "title", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var doc model.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// DocumentSummary is a document row joined with its chunk count, for the
// management listing.
type DocumentSummary struct {
	model.Document
	ChunkCount int `json:"chunk_count"`
}

func (r *DocumentRepo) List(ctx context.Context) ([]DocumentSummary, error) {
	const query = `
		SELECT d.id, d.title, d.created_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN document_chunks c ON c.document_id = d.id
		GROUP BY d.id, d.title, d.created_at
		ORDER BY d.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []DocumentSummary
	for rows.Next() {
		var item DocumentSummary
		if err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt, &item.ChunkCount); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// Delete removes a document; its chunks go with it via the cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
