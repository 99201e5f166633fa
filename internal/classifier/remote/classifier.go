// Package remote delegates classification to an external inference endpoint.
// Failures at this layer are absorbed, never surfaced: any transport error,
// non-2xx response, or malformed payload yields the configured fallback
// result, so the pipeline always produces a diagnosis.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/cropcareai/cropcare/internal/config"
	"github.com/cropcareai/cropcare/pkg/models"
)

// Classifier forwards image bytes to a remote model over HTTP.
type Classifier struct {
	inferenceURL string
	fallback     config.FallbackConfig
	client       *http.Client
}

// NewClassifier creates a delegating classifier. The timeout bounds the whole
// remote call; on expiry the fallback path triggers like any other failure.
func NewClassifier(cfg config.RemoteConfig, timeout time.Duration) *Classifier {
	return &Classifier{
		inferenceURL: cfg.InferenceURL,
		fallback:     cfg.Fallback,
		client:       &http.Client{Timeout: timeout},
	}
}

func (c *Classifier) Name() string { return "remote" }

// Classify never returns an error: every failure mode degrades to the
// configured fallback triple.
func (c *Classifier) Classify(ctx context.Context, img models.StoredImage) (models.Classification, error) {
	raw, err := os.ReadFile(img.Path)
	if err != nil {
		return c.degrade("reading stored image", err), nil
	}

	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	part, err := mp.CreateFormFile("image", img.Filename)
	if err == nil {
		_, err = part.Write(raw)
	}
	if err == nil {
		err = mp.Close()
	}
	if err != nil {
		return c.degrade("building multipart request", err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL, &body)
	if err != nil {
		return c.degrade("building request", err), nil
	}
	req.Header.Set("Content-Type", mp.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return c.degrade("calling inference endpoint", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Warn("inference endpoint returned non-2xx, using fallback",
			"status", resp.StatusCode, "filename", img.Filename)
		return c.fallbackResult(), nil
	}

	var payload inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.degrade("decoding inference response", err), nil
	}
	if payload.Crop == "" || payload.Disease == "" {
		slog.Warn("inference response missing crop or disease, using fallback",
			"filename", img.Filename)
		return c.fallbackResult(), nil
	}

	conf := payload.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}

	return models.Classification{
		Crop:           payload.Crop,
		Disease:        payload.Disease,
		ScientificName: payload.ScientificName,
		Confidence:     conf,
		Delegated:      true,
		Cause:          payload.Cause,
		Prevention:     payload.Prevention,
		Treatment:      payload.Treatment,
	}, nil
}

func (c *Classifier) degrade(stage string, err error) models.Classification {
	slog.Warn("remote classification failed, using fallback", "stage", stage, "error", err)
	return c.fallbackResult()
}

func (c *Classifier) fallbackResult() models.Classification {
	return models.Classification{
		Crop:           c.fallback.Crop,
		Disease:        c.fallback.Disease,
		ScientificName: c.fallback.ScientificName,
		Confidence:     c.fallback.Confidence,
		Delegated:      true,
	}
}

type inferenceResponse struct {
	Crop           string  `json:"crop"`
	Disease        string  `json:"disease"`
	ScientificName string  `json:"scientific_name"`
	Confidence     float64 `json:"confidence"`
	Cause          string  `json:"cause"`
	Prevention     string  `json:"prevention"`
	Treatment      string  `json:"treatment"`
}

// Compile-time check that Classifier implements models.Classifier.
var _ models.Classifier = (*Classifier)(nil)
