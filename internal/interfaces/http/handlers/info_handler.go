package handlers

import (
	"net/http"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/inference"
)

// MetricsSource provides the aggregated request metrics.
type MetricsSource interface {
	Snapshot() inference.MetricsSnapshot
}

// InfoHandler serves the static group information and the JSON metrics.
type InfoHandler struct {
	group   config.GroupConfig
	metrics MetricsSource
}

// NewInfoHandler creates an InfoHandler.
func NewInfoHandler(group config.GroupConfig, metrics MetricsSource) *InfoHandler {
	return &InfoHandler{group: group, metrics: metrics}
}

// GroupInfoResponse is the body of GET /group-info.
type GroupInfoResponse struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
}

// GroupInfo handles GET /group-info.
func (h *InfoHandler) GroupInfo(w http.ResponseWriter, r *http.Request) {
	members := h.group.Members
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, GroupInfoResponse{Group: h.group.Name, Members: members})
}

// Metrics handles GET /metrics.
func (h *InfoHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

//Personal.AI order the ending
