package model

// Chunk is a bounded substring of a document, the unit of embedding and
// retrieval. Chunks are immutable once stored and removed only together
// with their parent document.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
	ChunkIndex int       `json:"chunk_index"`
	CharCount  int       `json:"char_count"`
	CreatedAt  int64     `json:"created_at"`
}

// ChunkMetadata is the jsonb payload stored next to each chunk row.
type ChunkMetadata struct {
	ChunkIndex int `json:"chunkIndex"`
	CharCount  int `json:"charCount"`
}

// ChunkInsert is one pending chunk of an ingestion; the store assigns
// ChunkIndex from its position in the input slice.
type ChunkInsert struct {
	Content   string
	Embedding []float32
}
