package embedding_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropcareai/cropcare/internal/classifier/embedding"
	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/pkg/models"
)

// fakeEncoder returns canned vectors: each prompt gets a one-hot vector, and
// the image embedding is whatever the test configures.
type fakeEncoder struct {
	imageVec []float32
	imageErr error
	textErr  error
	dim      int
}

func (f *fakeEncoder) EncodeImage(_ context.Context, _ []byte) ([]float32, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.imageVec, nil
}

func (f *fakeEncoder) EncodeText(_ context.Context, texts []string) ([][]float32, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		v[i] = 1
		vecs[i] = v
	}
	return vecs, nil
}

// oneHotPlus builds a unit vector with weight w on prompt axis idx and the
// remainder on a spare axis no prompt occupies.
func oneHotPlus(dim, idx int, w float64) []float32 {
	v := make([]float32, dim)
	v[idx] = float32(w)
	v[dim-1] = float32(math.Sqrt(1 - w*w))
	return v
}

func storedImage(t *testing.T) models.StoredImage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaf.png")
	require.NoError(t, os.WriteFile(path, []byte("fake-image-bytes"), 0o644))
	return models.StoredImage{Filename: "leaf.png", Path: path, Format: "png"}
}

func TestClassify_PicksMostSimilarPrompt(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	// Tomato / Early Blight is the first entry; similarity 0.87 against its
	// prompt must come back as confidence 87.00.
	enc := &fakeEncoder{dim: dim, imageVec: oneHotPlus(dim, 0, 0.87)}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	result, err := clf.Classify(context.Background(), storedImage(t))
	require.NoError(t, err)

	assert.Equal(t, "Tomato", result.Crop)
	assert.Equal(t, "Early Blight", result.Disease)
	assert.Equal(t, "Alternaria solani", result.ScientificName)
	assert.InDelta(t, 87.0, result.Confidence, 0.001)
}

func TestClassify_OtherLabel(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	// Index 8 is Rice / Blast Disease.
	enc := &fakeEncoder{dim: dim, imageVec: oneHotPlus(dim, 8, 0.62)}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	result, err := clf.Classify(context.Background(), storedImage(t))
	require.NoError(t, err)

	assert.Equal(t, "Rice", result.Crop)
	assert.Equal(t, "Blast Disease", result.Disease)
	assert.InDelta(t, 62.0, result.Confidence, 0.001)
}

func TestClassify_TieBreaksOnFirstIndex(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	// Equal similarity to prompts 0 and 1: stable argmax keeps index 0.
	vec := make([]float32, dim)
	vec[0] = 1
	vec[1] = 1
	enc := &fakeEncoder{dim: dim, imageVec: vec}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	result, err := clf.Classify(context.Background(), storedImage(t))
	require.NoError(t, err)

	first := table.At(0)
	assert.Equal(t, first.Crop, result.Crop)
	assert.Equal(t, first.Disease, result.Disease)
}

func TestClassify_ConfidenceWithinRange(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	enc := &fakeEncoder{dim: dim, imageVec: oneHotPlus(dim, 3, 0.999)}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	result, err := clf.Classify(context.Background(), storedImage(t))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 100.0)
}

func TestNewClassifier_EncoderFailureIsModelUnavailable(t *testing.T) {
	enc := &fakeEncoder{textErr: errors.New("connection refused")}

	_, err := embedding.NewClassifier(context.Background(), enc, knowledge.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, embedding.ErrModelUnavailable)
}

func TestClassify_EncoderFailurePropagates(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	encErr := errors.New("encoder down")
	enc := &fakeEncoder{dim: dim, imageErr: encErr}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	_, err = clf.Classify(context.Background(), storedImage(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, encErr)
}

func TestClassify_MissingFileFails(t *testing.T) {
	table := knowledge.Default()
	dim := table.Len() + 1

	enc := &fakeEncoder{dim: dim, imageVec: oneHotPlus(dim, 0, 0.5)}
	clf, err := embedding.NewClassifier(context.Background(), enc, table)
	require.NoError(t, err)

	_, err = clf.Classify(context.Background(), models.StoredImage{
		Filename: "gone.png",
		Path:     filepath.Join(t.TempDir(), "gone.png"),
	})
	require.Error(t, err)
}
