package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cropcareai/cropcare/internal/api/response"
	"github.com/cropcareai/cropcare/internal/classifier/embedding"
	"github.com/cropcareai/cropcare/internal/diagnosis"
	"github.com/cropcareai/cropcare/internal/ingest"
	"github.com/cropcareai/cropcare/pkg/models"
)

// Predictor defines the interface the handler depends on.
type Predictor interface {
	Predict(ctx context.Context, params diagnosis.PredictParams) (*diagnosis.PredictResult, error)
}

// NewPredictHandler returns an http.HandlerFunc for POST /predict.
func NewPredictHandler(svc Predictor, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				response.Error(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
					"Uploaded file exceeds the size limit", nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Malformed multipart form", nil)
			return
		}

		username := r.FormValue("username")
		if username == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"username is required", nil)
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "MISSING_IMAGE",
				"Image file is required", nil)
			return
		}
		defer file.Close()

		result, err := svc.Predict(r.Context(), diagnosis.PredictParams{
			Username: username,
			Question: r.FormValue("question"),
			Filename: header.Filename,
			File:     file,
		})
		if err != nil {
			switch {
			case errors.Is(err, ingest.ErrUnsupportedType):
				response.Error(w, http.StatusBadRequest, "UNSUPPORTED_TYPE",
					"Only JPEG and PNG images are accepted", nil)
			case errors.Is(err, ingest.ErrInvalidImage):
				response.Error(w, http.StatusBadRequest, "INVALID_IMAGE",
					"Image data is corrupt or unreadable", nil)
			case errors.Is(err, ingest.ErrStorage):
				response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
					"Failed to store the uploaded image", nil)
			case errors.Is(err, diagnosis.ErrUnknownLabel):
				response.Error(w, http.StatusInternalServerError, "UNKNOWN_LABEL",
					"Classification produced an unknown label", nil)
			case errors.Is(err, embedding.ErrEncoderTimeout):
				response.Error(w, http.StatusGatewayTimeout, "MODEL_TIMEOUT",
					"Classification took too long and was cancelled", nil)
			case errors.Is(err, embedding.ErrEncoderUnreachable),
				errors.Is(err, embedding.ErrEncoderResponse):
				response.Error(w, http.StatusBadGateway, "MODEL_UNAVAILABLE",
					"The classification model is not available", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, predictResponse{
			CDDM:       result.Record,
			Confidence: result.Confidence,
			Backend:    result.Backend,
		})
	}
}

type predictResponse struct {
	models.CDDM
	Confidence float64 `json:"confidence"`
	Backend    string  `json:"backend"`
}
