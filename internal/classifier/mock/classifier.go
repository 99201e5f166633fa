package mock

import (
	"context"

	"github.com/cropcareai/cropcare/pkg/models"
)

// MockClassifier satisfies models.Classifier for testing.
type MockClassifier struct {
	Name_        string
	ClassifyFunc func(ctx context.Context, img models.StoredImage) (models.Classification, error)
}

func (m *MockClassifier) Name() string { return m.Name_ }

func (m *MockClassifier) Classify(ctx context.Context, img models.StoredImage) (models.Classification, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, img)
	}
	return models.Classification{}, nil
}

// NewMockClassifier returns a MockClassifier with a sensible default result.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ models.StoredImage) (models.Classification, error) {
			return models.Classification{
				Crop:           "Tomato",
				Disease:        "Early Blight",
				ScientificName: "Alternaria solani",
				Confidence:     87.0,
			}, nil
		},
	}
}

// NewFailingClassifier returns a MockClassifier that always returns the given error.
func NewFailingClassifier(err error) *MockClassifier {
	return &MockClassifier{
		Name_: "mock-failing",
		ClassifyFunc: func(_ context.Context, _ models.StoredImage) (models.Classification, error) {
			return models.Classification{}, err
		},
	}
}

// NewFixedClassifier returns a MockClassifier that always returns the given result.
func NewFixedClassifier(result models.Classification) *MockClassifier {
	return &MockClassifier{
		Name_: "mock-fixed",
		ClassifyFunc: func(_ context.Context, _ models.StoredImage) (models.Classification, error) {
			return result, nil
		},
	}
}

// Compile-time check that MockClassifier implements Classifier.
var _ models.Classifier = (*MockClassifier)(nil)
