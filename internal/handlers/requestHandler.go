package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docquery/internal/adapter"
	"docquery/internal/adapter/utils"
	"docquery/internal/api"
	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/queryengine"
	"docquery/pkg/applog"
)

var logRH *applog.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// UploadHandler godoc
// @Summary      Upload documents for processing
// @Description  Receives one or more files via multipart/form-data, saves them to a temporary directory and queues ingestion. Returns immediately; poll the status URL per document.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        documents  formData  file  true  "One or more files (pdf, txt, docx, rtf, jpg, jpeg, png, tiff)"
// @Success      202  {object}  api.UploadResponse  "Accepted - returns one entry per file"
// @Failure      400  {object}  api.ErrorResponse   "No files, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse   "Storage error"
// @Router       /documents [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["documents"]) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "No files in 'documents' field")
		return
	}

	traceId := r.Context().Value(config.TraceIDKey).(string)
	var accepted []api.UploadedDocument
	for _, fileHeader := range r.MultipartForm.File["documents"] {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedUploadExt[ext] {
			WriteErrorResponse(w, http.StatusBadRequest, fileHeader.Filename, "Unsupported file type "+ext)
			return
		}

		docId := utils.GetNewUUID()
		tempPath, err := saveUpload(fileHeader, targetDir, docId)
		if err != nil {
			logRH.Error("Could not store upload", "filename", fileHeader.Filename, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, fileHeader.Filename, "Storage error")
			return
		}

		newDoc := newDocumentData{
			id:       docId,
			filename: fileHeader.Filename,
			fileType: strings.TrimPrefix(ext, "."),
			tempPath: tempPath,
			traceId:  traceId,
		}
		if err := EnqueueDocument(newDoc); err != nil {
			logRH.Error("Could not queue document", "document", docId, "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, fileHeader.Filename, "Queue error")
			return
		}
		accepted = append(accepted, api.UploadedDocument{
			Id:        docId,
			Filename:  fileHeader.Filename,
			StatusURL: fmt.Sprintf("status/%s", docId),
		})
	}

	writeJsonResponse(w, http.StatusAccepted, api.UploadResponse{Documents: accepted})
}

// GetStatusHandler godoc
// @Summary      Get document status
// @Description  Retrieves the processing status of one document by its ID.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse  "Current document status"
// @Failure      404  {object}  api.ErrorResponse     "Document not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	doc, isFound := validateId(idString, r.Context().Value(config.TraceIDKey).(string))

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Description  Lists every known document, newest upload first.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	docs, err := ListAllDocuments(r.Context())
	if err != nil {
		logRH.Error("Could not list documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Description  Returns the full record of one document, including chunk count once processed.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	GetStatusHandler(w, r)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document record and drops its vector index.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	_, isFound := validateId(idString, r.Context().Value(config.TraceIDKey).(string))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
		return
	}
	if err := DeleteDocument(r.Context(), idString); err != nil {
		logRH.Error("Could not delete document", "document", idString, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, idString, "Delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QueryHandler godoc
// @Summary      Query documents
// @Description  Answers a natural-language question against the selected documents (or every completed document when none are named), then synthesizes themes across the per-document answers.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question and optional document ID selection"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty question"
// @Failure      404      {object}  api.ErrorResponse  "Named document not found"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the query request reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad query request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	start := time.Now()
	results, failed, err := handlerInstance.engine.AnswerAll(r.Context(), requestData.DocumentIDs, requestData.Question)
	if err != nil {
		logRH.Error("Query failed", "error", err)
		writeQueryError(w, err)
		return
	}

	synthesis := handlerInstance.synthesizer.Synthesize(r.Context(), requestData.Question, results)
	logRH.Info("Query answered", "documents", len(results), "failed", len(failed), "elapsed", time.Since(start))

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(requestData.Question, synthesis, results, failed))
}

func writeQueryError(w http.ResponseWriter, err error) {
	var notReady *docmodel.DocumentNotReadyError
	switch {
	case errors.Is(err, queryengine.ErrDocumentNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "", err.Error())
	case errors.As(err, &notReady):
		WriteErrorResponse(w, http.StatusConflict, notReady.DocumentID, err.Error())
	default:
		WriteErrorResponse(w, http.StatusInternalServerError, "", "query failed")
	}
}

func saveUpload(fileHeader *multipart.FileHeader, targetDir string, docId string) (string, error) {
	fileReader, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer fileReader.Close()

	filename := fmt.Sprintf("%s-%s", docId, filepath.Base(fileHeader.Filename))
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		return "", err
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		return "", err
	}
	return tempFilePath, nil
}
