// backend/src/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/finsight/backend/src/config"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/parsers"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/utils"
)

type UploadHandler struct {
	ingestionService services.IngestionService
}

func NewUploadHandler(service services.IngestionService) *UploadHandler {
	return &UploadHandler{
		ingestionService: service,
	}
}

// HandleUpload ingests one multipart statement file and returns the
// IngestionResult, including any per-row rejections.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("failed to parse upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "failed to retrieve file from request; ensure the 'file' field is used", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	sourceName := r.FormValue("source")
	if sourceName == "" {
		sourceName = fileHeader.Filename
	}

	result, err := h.ingestionService.IngestFile(r.Context(), file, fileHeader.Filename, sourceName)
	if err != nil {
		var schemaErr *parsers.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			utils.SendJSONError(w, schemaErr.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, parsers.ErrNoValidRows), errors.Is(err, services.ErrEmptyFile):
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logger.L.Error("Ingestion failed", "file", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "failed to ingest file", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSONResponse(w, result, http.StatusCreated)
}
