// Package classifier selects and constructs the classification backend.
package classifier

import (
	"context"
	"fmt"

	"github.com/cropcareai/cropcare/internal/classifier/embedding"
	"github.com/cropcareai/cropcare/internal/classifier/remote"
	"github.com/cropcareai/cropcare/internal/config"
	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/pkg/models"
)

// New constructs the appropriate classifier backend based on config.
// Called once at server startup; the embedding backend encodes its label
// prompts here, so an unreachable encoder fails the boot rather than requests.
func New(ctx context.Context, cfg config.ClassifierConfig, table *knowledge.Table) (models.Classifier, error) {
	switch cfg.Backend {
	case "embedding":
		enc := embedding.NewHTTPEncoder(cfg.Embedding.BaseURL, cfg.Embedding.Timeout)
		return embedding.NewClassifier(ctx, enc, table)
	case "remote":
		return remote.NewClassifier(cfg.Remote, cfg.ClassifyTimeout), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q: must be one of embedding, remote", cfg.Backend)
	}
}
