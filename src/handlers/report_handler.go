// backend/src/handlers/report_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/processors"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: service,
	}
}

// HandleGetReport returns the full monthly report for a dataset. Query
// params: month (YYYY-MM, optional, default latest), recommendations
// (optional count).
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")
	month := r.URL.Query().Get("month")

	recommendations := 0
	if raw := r.URL.Query().Get("recommendations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendJSONError(w, "recommendations must be an integer", http.StatusBadRequest)
			return
		}
		recommendations = n
	}

	report, err := h.reportService.GenerateReport(r.Context(), datasetID, month, recommendations)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMonth):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrDatasetNotFound), errors.Is(err, processors.ErrNoTransactions):
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.L.Error("Report generation failed", "datasetID", datasetID, "month", month, "error", err)
			utils.SendJSONError(w, "failed to generate report", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSONResponse(w, report, http.StatusOK)
}

// HandleGetMonths returns the dataset's available YYYY-MM keys.
func (h *ReportHandler) HandleGetMonths(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	months, err := h.reportService.GetMonths(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L.Error("Listing months failed", "datasetID", datasetID, "error", err)
		utils.SendJSONError(w, "failed to list months", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, map[string]any{"dataset_id": datasetID, "months": months}, http.StatusOK)
}
