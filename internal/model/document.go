package model

type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

// DocumentInfo carries metadata recovered from the uploaded file itself.
type DocumentInfo struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Creator string `json:"creator"`
}
