// Package embedding implements nearest-prototype classification in a joint
// image/text embedding space: the image embedding is compared against one
// precomputed prompt embedding per knowledge entry, and the best match wins.
// There is no training step, only inference-time similarity search over a
// fixed label set.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/pkg/models"
)

// ErrModelUnavailable means the prompt embeddings could not be computed at
// startup. It is never returned per-request.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Classifier picks the knowledge entry whose prompt embedding is most similar
// to the uploaded image's embedding.
type Classifier struct {
	encoder Encoder
	table   *knowledge.Table
	prompts [][]float32 // L2-normalized, index-aligned with table entries
}

// NewClassifier encodes every knowledge prompt once and keeps the normalized
// vectors for the lifetime of the process. An encoder failure here is fatal.
func NewClassifier(ctx context.Context, enc Encoder, table *knowledge.Table) (*Classifier, error) {
	vecs, err := enc.EncodeText(ctx, table.Prompts())
	if err != nil {
		return nil, fmt.Errorf("%w: encoding label prompts: %v", ErrModelUnavailable, err)
	}
	for i := range vecs {
		if len(vecs[i]) == 0 {
			return nil, fmt.Errorf("%w: empty prompt embedding at index %d", ErrModelUnavailable, i)
		}
		normalize(vecs[i])
	}
	return &Classifier{encoder: enc, table: table, prompts: vecs}, nil
}

func (c *Classifier) Name() string { return "embedding" }

// Classify encodes the stored image and returns the entry with the highest
// cosine similarity. Confidence is the similarity scaled to a percentage,
// rounded to two decimals. Ties break on the first index (stable argmax).
func (c *Classifier) Classify(ctx context.Context, img models.StoredImage) (models.Classification, error) {
	raw, err := os.ReadFile(img.Path)
	if err != nil {
		return models.Classification{}, fmt.Errorf("reading stored image: %w", err)
	}

	vec, err := c.encoder.EncodeImage(ctx, raw)
	if err != nil {
		return models.Classification{}, fmt.Errorf("encoding image: %w", err)
	}
	normalize(vec)

	best := 0
	bestSim := float32(math.Inf(-1))
	for i, p := range c.prompts {
		if sim := dot(vec, p); sim > bestSim {
			best = i
			bestSim = sim
		}
	}

	entry := c.table.At(best)
	return models.Classification{
		Crop:           entry.Crop,
		Disease:        entry.Disease,
		ScientificName: entry.ScientificName,
		Confidence:     roundPercent(float64(bestSim)),
	}, nil
}

// roundPercent scales a similarity score to [0, 100] with two-decimal
// precision.
func roundPercent(sim float64) float64 {
	return math.Round(sim*100*100) / 100
}

// normalize scales v to unit length in place. Zero vectors are left as-is so
// their similarity to everything is zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// dot returns the dot product of a and b over their common length.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Compile-time check that Classifier implements models.Classifier.
var _ models.Classifier = (*Classifier)(nil)
