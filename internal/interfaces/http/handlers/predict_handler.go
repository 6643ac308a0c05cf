package handlers

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/turtacn/VisionGate/internal/inference"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/pkg/errors"
)

const (
	// ImageField and ModelField are the multipart field names of /predict.
	ImageField = "image"
	ModelField = "model"

	multipartMemory = 8 << 20
)

// Predictor runs a prediction for an uploaded image.
type Predictor interface {
	Predict(ctx context.Context, requestedModel string, image *inference.ImagePayload) (*inference.PredictResponse, error)
}

// PredictHandler serves POST /predict.
type PredictHandler struct {
	predictor   Predictor
	maxBodySize int64
	logger      logging.Logger
}

// NewPredictHandler creates a PredictHandler. Request bodies larger than
// maxBodySize are rejected with 413.
func NewPredictHandler(predictor Predictor, maxBodySize int64, logger logging.Logger) *PredictHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PredictHandler{predictor: predictor, maxBodySize: maxBodySize, logger: logger}
}

// Predict handles POST /predict with a multipart "image" file and an
// optional "model" field.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	image, model, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeAppError(w, r, h.logger, err)
		return
	}

	resp, err := h.predictor.Predict(r.Context(), model, image)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload extracts the image and the requested model. A request that is
// not multipart or has no image part yields MissingImage.
func (h *PredictHandler) readUpload(r *http.Request) (*inference.ImagePayload, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, "", err
		}
		return nil, "", errors.MissingImage()
	}
	model := r.FormValue(ModelField)

	file, header, err := r.FormFile(ImageField)
	if err != nil {
		return nil, model, errors.MissingImage()
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, model, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read image")
	}

	return &inference.ImagePayload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, model, nil
}

//Personal.AI order the ending
