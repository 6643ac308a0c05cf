package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Prediction is one detection returned by /predict.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// PredictResult is the body of a successful /predict.
type PredictResult struct {
	Predictions []Prediction `json:"predictions"`
	ModelUsed   string       `json:"model_used"`
}

// HealthStatus is the body of /health-status.
type HealthStatus struct {
	Status string `json:"status"`
	Server string `json:"server"`
	Uptime string `json:"uptime"`
}

// Healthy reports whether the backend answered its ping.
func (h *HealthStatus) Healthy() bool {
	return h.Status == "Healthy"
}

// ModelList is the body of /management/models.
type ModelList struct {
	AvailableModels []string `json:"available_models"`
}

// TableHeaders implements table output for the CLI.
func (l *ModelList) TableHeaders() []string { return []string{"MODEL"} }

// TableRows implements table output for the CLI.
func (l *ModelList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.AvailableModels))
	for _, m := range l.AvailableModels {
		rows = append(rows, []string{m})
	}
	return rows
}

func (l *ModelList) String() string {
	return strings.Join(l.AvailableModels, "\n")
}

// ModelConfig is the configuration part of a model description.
type ModelConfig struct {
	InputSize           [2]int  `json:"input_size"`
	BatchSize           int     `json:"batch_size"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// ModelDescription is the body of /management/models/{id}/describe.
type ModelDescription struct {
	Model          string      `json:"model"`
	Config         ModelConfig `json:"config"`
	DateRegistered string      `json:"date_registered"`
}

// TableHeaders implements table output for the CLI.
func (d *ModelDescription) TableHeaders() []string {
	return []string{"MODEL", "INPUT SIZE", "BATCH", "THRESHOLD", "REGISTERED"}
}

// TableRows implements table output for the CLI.
func (d *ModelDescription) TableRows() [][]string {
	return [][]string{{
		d.Model,
		fmt.Sprintf("%dx%d", d.Config.InputSize[0], d.Config.InputSize[1]),
		strconv.Itoa(d.Config.BatchSize),
		strconv.FormatFloat(d.Config.ConfidenceThreshold, 'f', 2, 64),
		d.DateRegistered,
	}}
}

// SetDefaultResult is the body of /management/models/{id}/set-default.
type SetDefaultResult struct {
	Success      bool   `json:"success"`
	DefaultModel string `json:"default_model"`
}

// Metrics is the body of /metrics.
type Metrics struct {
	RequestRatePerMinute float64 `json:"request_rate_per_minute"`
	AvgLatencyMs         float64 `json:"avg_latency_ms"`
	MaxLatencyMs         float64 `json:"max_latency_ms"`
	TotalRequests        int64   `json:"total_requests"`
}

// TableHeaders implements table output for the CLI.
func (m *Metrics) TableHeaders() []string {
	return []string{"RATE/MIN", "AVG MS", "MAX MS", "TOTAL"}
}

// TableRows implements table output for the CLI.
func (m *Metrics) TableRows() [][]string {
	return [][]string{{
		strconv.FormatFloat(m.RequestRatePerMinute, 'f', 2, 64),
		strconv.FormatFloat(m.AvgLatencyMs, 'f', 2, 64),
		strconv.FormatFloat(m.MaxLatencyMs, 'f', 2, 64),
		strconv.FormatInt(m.TotalRequests, 10),
	}}
}

// GroupInfo is the body of /group-info.
type GroupInfo struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`
}

// Predict uploads image to /predict. An empty model uses the gateway
// default. Predictions are never retried.
func (c *Client) Predict(ctx context.Context, model, filename string, image io.Reader) (*PredictResult, error) {
	data, err := io.ReadAll(image)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if filename == "" {
		filename = "image"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	payload := body.Bytes()
	contentType := mw.FormDataContentType()

	newReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}

	var out PredictResult
	if err := c.do(ctx, newReq, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches /health-status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, "/health-status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListModels fetches /management/models.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	var out ModelList
	if err := c.get(ctx, "/management/models", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DescribeModel fetches /management/models/{id}/describe.
func (c *Client) DescribeModel(ctx context.Context, id string) (*ModelDescription, error) {
	var out ModelDescription
	if err := c.get(ctx, "/management/models/"+url.PathEscape(id)+"/describe", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetDefaultModel calls /management/models/{id}/set-default.
func (c *Client) SetDefaultModel(ctx context.Context, id string) (*SetDefaultResult, error) {
	var out SetDefaultResult
	if err := c.get(ctx, "/management/models/"+url.PathEscape(id)+"/set-default", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics fetches /metrics.
func (c *Client) Metrics(ctx context.Context) (*Metrics, error) {
	var out Metrics
	if err := c.get(ctx, "/metrics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GroupInfo fetches /group-info.
func (c *Client) GroupInfo(ctx context.Context) (*GroupInfo, error) {
	var out GroupInfo
	if err := c.get(ctx, "/group-info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
