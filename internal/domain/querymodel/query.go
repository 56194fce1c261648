package querymodel

// QueryResult is the per-document answer for one query. Ephemeral, recomputed
// on every request.
type QueryResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Answer     string `json:"answer"`
	Citation   string `json:"citation"`
}

// FailedDocument is the error entry for a document whose retrieval or
// generation failed. It never aborts the rest of the query.
type FailedDocument struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// Theme is a cross-document topical cluster derived from the per-document
// answers of one query.
type Theme struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	SupportingDocuments []string `json:"supporting_documents"`
	Citations           []string `json:"citations"`
}
