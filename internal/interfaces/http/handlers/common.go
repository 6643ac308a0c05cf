// Package handlers implements the HTTP endpoints of the gateway.
package handlers

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/pkg/errors"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeAppError maps err to its HTTP status and writes its public message.
// Causes and stacks of server-side failures go to the log only.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	ae := errors.AsAppError(err)
	status := errors.HTTPStatusForCode(ae.Code)

	fields := []logging.Field{
		logging.String("code", ae.Code.String()),
		logging.String("path", r.URL.Path),
		logging.String("request_id", chimw.GetReqID(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		if ae.Cause != nil {
			fields = append(fields, logging.Err(ae.Cause))
		}
		if ae.Stack != "" {
			fields = append(fields, logging.String("stack", ae.Stack))
		}
		logger.Error(ae.Error(), fields...)
	} else {
		logger.Debug(ae.Error(), fields...)
	}

	writeError(w, status, ae.PublicMessage())
}

//Personal.AI order the ending
