package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/inference"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// ModelRegistry is the registry surface used by the management endpoints.
type ModelRegistry interface {
	List() []string
	Describe(id string) (inference.ModelEntry, error)
	SetDefault(id string) error
}

// ManagementHandler serves /management/models and its per-model actions.
type ManagementHandler struct {
	registry ModelRegistry
	logger   logging.Logger
}

// NewManagementHandler creates a ManagementHandler.
func NewManagementHandler(registry ModelRegistry, logger logging.Logger) *ManagementHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ManagementHandler{registry: registry, logger: logger}
}

// ModelListResponse is the body of GET /management/models.
type ModelListResponse struct {
	AvailableModels []string `json:"available_models"`
}

// ModelConfigView is the per-model configuration reported by describe.
type ModelConfigView struct {
	InputSize           [2]int  `json:"input_size"`
	BatchSize           int     `json:"batch_size"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// DescribeResponse is the body of GET /management/models/{id}/describe.
type DescribeResponse struct {
	Model          string          `json:"model"`
	Config         ModelConfigView `json:"config"`
	DateRegistered string          `json:"date_registered"`
}

// SetDefaultResponse is the body of GET /management/models/{id}/set-default.
type SetDefaultResponse struct {
	Success      bool   `json:"success"`
	DefaultModel string `json:"default_model"`
}

// ListModels handles GET /management/models.
func (h *ManagementHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelListResponse{AvailableModels: h.registry.List()})
}

// Describe handles GET /management/models/{id}/describe.
func (h *ManagementHandler) Describe(w http.ResponseWriter, r *http.Request) {
	entry, err := h.registry.Describe(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, DescribeResponse{
		Model: entry.ID,
		Config: ModelConfigView{
			InputSize:           entry.InputSize,
			BatchSize:           entry.BatchSize,
			ConfidenceThreshold: entry.ConfidenceThreshold,
		},
		DateRegistered: entry.RegisteredAt.Format(config.DateLayout),
	})
}

// SetDefault handles GET /management/models/{id}/set-default.
func (h *ManagementHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.SetDefault(id); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	h.logger.Info("default model changed via API", logging.String("model", id))
	writeJSON(w, http.StatusOK, SetDefaultResponse{Success: true, DefaultModel: id})
}

//Personal.AI order the ending
