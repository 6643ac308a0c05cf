package inference

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/pkg/errors"
)

const (
	// multipart field the backend reads the image from.
	backendImageField = "data"

	// upper bound on a decoded backend response body.
	maxBackendResponseBytes = 8 << 20

	defaultPredictTimeout = 30 * time.Second
	defaultProbeTimeout   = 3 * time.Second
)

// Classified failure details returned to callers.
const (
	DetailTimeout   = "request timed out"
	DetailCanceled  = "request canceled"
	DetailConnect   = "connection failed"
	DetailMalformed = "malformed response"
)

// HTTPBackendOption configures an HTTPBackend.
type HTTPBackendOption func(*HTTPBackend)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPBackendOption {
	return func(b *HTTPBackend) {
		if c != nil {
			b.client = c
		}
	}
}

// WithPredictTimeout bounds every Forward call.
func WithPredictTimeout(d time.Duration) HTTPBackendOption {
	return func(b *HTTPBackend) {
		if d > 0 {
			b.predictTimeout = d
		}
	}
}

// WithProbeTimeout bounds every Probe call.
func WithProbeTimeout(d time.Duration) HTTPBackendOption {
	return func(b *HTTPBackend) {
		if d > 0 {
			b.probeTimeout = d
		}
	}
}

// WithBackendLogger sets the logger.
func WithBackendLogger(l logging.Logger) HTTPBackendOption {
	return func(b *HTTPBackend) {
		if l != nil {
			b.logger = l
		}
	}
}

// HTTPBackend talks to a TorchServe-style inference cluster:
//
//	POST {base}/predictions/{model}   multipart field "data"
//	GET  {base}/ping                  2xx when ready
type HTTPBackend struct {
	baseURL        string
	client         *http.Client
	predictTimeout time.Duration
	probeTimeout   time.Duration
	logger         logging.Logger
	probes         singleflight.Group
}

var _ Backend = (*HTTPBackend)(nil)

// NewHTTPBackend returns a backend client rooted at baseURL.
func NewHTTPBackend(baseURL string, opts ...HTTPBackendOption) (*HTTPBackend, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.InvalidParam("backend base URL must be an absolute http(s) URL").WithDetail(baseURL)
	}

	b := &HTTPBackend{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		predictTimeout: defaultPredictTimeout,
		probeTimeout:   defaultProbeTimeout,
		logger:         logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Forward posts image to the prediction endpoint of modelID and returns the
// raw detections. Every failure is a BackendUnavailable error whose detail is
// one of the Detail* constants or "unexpected status N".
func (b *HTTPBackend) Forward(ctx context.Context, modelID string, image *ImagePayload) ([]RawPrediction, error) {
	if image.Empty() {
		return nil, errors.MissingImage()
	}

	body, contentType, err := encodeImage(image)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to encode image")
	}

	ctx, cancel := context.WithTimeout(ctx, b.predictTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/predictions/%s", b.baseURL, url.PathEscape(modelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build backend request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := b.logger.With(logging.String("model", modelID), logging.String("backend_request_id", requestID))

	resp, err := b.client.Do(req)
	if err != nil {
		detail := classifyTransportError(ctx, err)
		log.Warn("backend request failed", logging.String("reason", detail), logging.Err(err))
		return nil, errors.BackendUnavailable(detail, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendResponseBytes))
	if err != nil {
		detail := classifyTransportError(ctx, err)
		log.Warn("backend response read failed", logging.String("reason", detail), logging.Err(err))
		return nil, errors.BackendUnavailable(detail, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned non-success status",
			logging.Int("status", resp.StatusCode),
			logging.String("body", truncate(string(raw), 512)))
		return nil, errors.BackendUnavailable(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var envelope struct {
		Predictions *[]RawPrediction `json:"predictions"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Predictions == nil {
		if err == nil {
			err = stderrors.New(`response has no "predictions" array`)
		}
		log.Warn("backend returned malformed body", logging.Err(err), logging.String("body", truncate(string(raw), 512)))
		return nil, errors.BackendUnavailable(DetailMalformed, err)
	}

	log.Debug("backend request completed", logging.Int("predictions", len(*envelope.Predictions)))
	return *envelope.Predictions, nil
}

// Probe reports whether the backend answers its ping endpoint with a 2xx.
// Concurrent probes share one backend round trip.
func (b *HTTPBackend) Probe(ctx context.Context) ProbeStatus {
	ch := b.probes.DoChan("ping", func() (interface{}, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.probeTimeout)
		defer cancel()
		return b.ping(pctx), nil
	})

	select {
	case res := <-ch:
		return res.Val.(ProbeStatus)
	case <-ctx.Done():
		return StatusUnhealthy
	}
}

func (b *HTTPBackend) ping(ctx context.Context) ProbeStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/ping", nil)
	if err != nil {
		return StatusUnhealthy
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Debug("backend probe failed", logging.Err(err))
		return StatusUnhealthy
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.logger.Debug("backend probe returned non-success status", logging.Int("status", resp.StatusCode))
		return StatusUnhealthy
	}
	return StatusHealthy
}

func encodeImage(image *ImagePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, backendImageField, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func classifyTransportError(ctx context.Context, err error) string {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return DetailTimeout
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return DetailTimeout
	}
	if stderrors.Is(err, context.Canceled) {
		return DetailCanceled
	}
	return DetailConnect
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

//Personal.AI order the ending
