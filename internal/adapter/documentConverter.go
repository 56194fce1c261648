package adapter

import (
	"fmt"

	"docquery/internal/api"
	"docquery/internal/domain/docmodel"
	"docquery/internal/domain/querymodel"
	"docquery/internal/theme"
)

func ToDocumentResponse(doc docmodel.Document) api.DocumentResponse {
	resp := api.DocumentResponse{
		Id:           doc.ID,
		Filename:     doc.Filename,
		FileType:     doc.FileType,
		Status:       string(doc.Status),
		StatusDetail: doc.StatusString(),
		OCRUsed:      doc.OCRUsed,
		ChunkCount:   doc.ChunkCount,
		UploadedTime: doc.UploadedTime,
	}
	if !doc.ProcessedTime.IsZero() {
		processed := doc.ProcessedTime
		resp.ProcessedTime = &processed
	}
	return resp
}

func ToDocumentListResponse(docs []docmodel.Document) api.DocumentListResponse {
	out := make([]api.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToDocumentResponse(doc))
	}
	return api.DocumentListResponse{Documents: out, Count: len(out)}
}

func ToUploadedDocument(doc docmodel.Document) api.UploadedDocument {
	return api.UploadedDocument{
		Id:        doc.ID,
		Filename:  doc.Filename,
		StatusURL: fmt.Sprintf("status/%s", doc.ID),
	}
}

func ToQueryResponse(question string, synthesis theme.Synthesis, results []querymodel.QueryResult, failed []querymodel.FailedDocument) api.QueryResponse {
	answers := make([]api.DocumentAnswer, 0, len(results))
	for _, r := range results {
		answers = append(answers, api.DocumentAnswer{
			DocumentID: r.DocumentID,
			Filename:   r.Filename,
			Answer:     r.Answer,
			Citation:   r.Citation,
		})
	}

	var failures []api.FailedDocument
	for _, f := range failed {
		failures = append(failures, api.FailedDocument{DocumentID: f.DocumentID, Reason: f.Reason})
	}

	var themes []api.ThemeResponse
	for _, t := range synthesis.Themes {
		themes = append(themes, api.ThemeResponse{
			Name:                t.Name,
			Description:         t.Description,
			SupportingDocuments: t.SupportingDocuments,
			Citations:           t.Citations,
		})
	}

	return api.QueryResponse{
		Question:        question,
		Answer:          synthesis.Answer,
		Themes:          themes,
		Results:         answers,
		FailedDocuments: failures,
	}
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{Id: id, Code: code, Message: message}
}
