package api

import "time"

// DocumentResponse is the external view of one document record.
type DocumentResponse struct {
	Id            string     `json:"id" example:"d8f3b2c4-1a9e-4f0b-a6d7-2c5e8f901234"`
	Filename      string     `json:"filename" example:"quarterly-report.pdf"`
	FileType      string     `json:"file_type" example:"pdf"`
	Status        string     `json:"status" example:"completed"`
	StatusDetail  string     `json:"status_detail" example:"completed"`
	OCRUsed       bool       `json:"ocr_used"`
	ChunkCount    int        `json:"chunk_count" example:"42"`
	UploadedTime  time.Time  `json:"uploaded_time"`
	ProcessedTime *time.Time `json:"processed_time,omitempty"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

// UploadedDocument is the per-file acknowledgement of an upload. Processing
// continues in the background; poll the status URL.
type UploadedDocument struct {
	Id        string `json:"id"`
	Filename  string `json:"filename"`
	StatusURL string `json:"status_url" example:"status/d8f3b2c4"`
}

type UploadResponse struct {
	Documents []UploadedDocument `json:"documents"`
}

type DocumentAnswer struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Answer     string `json:"answer"`
	Citation   string `json:"citation" example:"Page 2, Chunk 3; Page 4, Chunk 7"`
}

type FailedDocument struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

type ThemeResponse struct {
	Name                string   `json:"name" example:"Revenue Growth"`
	Description         string   `json:"description"`
	SupportingDocuments []string `json:"supporting_documents"`
	Citations           []string `json:"citations"`
}

type QueryResponse struct {
	Question        string           `json:"question"`
	Answer          string           `json:"answer"`
	Themes          []ThemeResponse  `json:"themes,omitempty"`
	Results         []DocumentAnswer `json:"results"`
	FailedDocuments []FailedDocument `json:"failed_documents,omitempty"`
}

type ErrorResponse struct {
	Id      string `json:"id,omitempty"`
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"document not found"`
}

// requests---------------------

type QueryRequest struct {
	Question    string   `json:"question" validate:"required"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}
