// Package models contains shared data models used across the CropCare codebase.
package models

import "context"

// Classifier is the core interface that all classification backends must
// implement. Never call a specific backend directly — always inject this
// interface.
type Classifier interface {
	// Classify produces a crop/disease prediction for a stored image.
	Classify(ctx context.Context, img StoredImage) (Classification, error)
	// Name returns the backend identifier (e.g., "embedding", "remote").
	Name() string
}

// StoredImage is a validated, normalized upload sitting in the upload directory.
type StoredImage struct {
	Filename string `json:"filename"`
	Path     string `json:"-"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Classification is the raw output of a classifier backend. Confidence is a
// percentage in [0, 100] rounded to two decimals.
type Classification struct {
	Crop           string  `json:"crop"`
	Disease        string  `json:"disease"`
	ScientificName string  `json:"scientific_name,omitempty"`
	Confidence     float64 `json:"confidence"`

	// Delegated marks results produced by the delegating backend. Their
	// labels come from an external model and may fall outside the knowledge
	// table, so the normalizer must synthesize instead of joining.
	Delegated bool `json:"-"`

	// Descriptive text carried in a delegated payload. The embedding backend
	// leaves these empty and the normalizer joins the knowledge table instead.
	Cause      string `json:"cause,omitempty"`
	Prevention string `json:"prevention,omitempty"`
	Treatment  string `json:"treatment,omitempty"`
}
