// backend/src/utils/http.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/finsight/backend/src/logger"
)

// SendJSONResponse writes v as a JSON body with the given status code.
func SendJSONResponse(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Failed to encode JSON response", "error", err)
	}
}

// SendJSONError writes a JSON error envelope with the given status code.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	SendJSONResponse(w, map[string]string{"error": message}, statusCode)
}
