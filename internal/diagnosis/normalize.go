package diagnosis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cropcareai/cropcare/internal/knowledge"
	"github.com/cropcareai/cropcare/pkg/models"
)

// ErrUnknownLabel means a classification named a crop/disease pair with no
// knowledge entry. With a closed label set this should never happen, but a
// partially-populated record is worse than a failed request.
var ErrUnknownLabel = errors.New("classification label has no knowledge entry")

// Normalize projects a raw classification into the canonical CDDM record.
// Deterministic, no side effects.
//
// Delegated results are synthesized directly from the payload: their labels
// come from an external model and may not exist in the table, and the
// delegated pipeline must always complete. Everything else joins the
// knowledge table and fails with ErrUnknownLabel on a miss.
func Normalize(cls models.Classification, imageID string, table *knowledge.Table) (models.CDDM, error) {
	if cls.Delegated {
		return synthesize(cls, imageID), nil
	}

	entry, ok := table.Lookup(cls.Crop, cls.Disease)
	if !ok {
		return models.CDDM{}, fmt.Errorf("%w: %s/%s", ErrUnknownLabel, cls.Crop, cls.Disease)
	}

	return models.CDDM{
		ImageID:        imageID,
		Crop:           entry.Crop,
		DiseaseName:    entry.Disease,
		ScientificName: entry.ScientificName,
		Symptoms:       entry.Symptoms,
		Causes:         causesFor(entry),
		Solutions: models.SolutionSet{
			Cultural:   []string{"Crop rotation", "Remove infected leaves"},
			Biological: []string{"Bio-fungicide"},
			Chemical:   []string{"Apply Mancozeb if severe"},
		},
		PreventionSummary: strings.Join(entry.Precautions, "; "),
	}, nil
}

// synthesize builds a minimal CDDM from a delegated payload without a
// knowledge-table join.
func synthesize(cls models.Classification, imageID string) models.CDDM {
	cddm := models.CDDM{
		ImageID:        imageID,
		Crop:           cls.Crop,
		DiseaseName:    cls.Disease,
		ScientificName: cls.ScientificName,
		Symptoms:       []string{},
		Causes:         []string{},
		Solutions: models.SolutionSet{
			Cultural:   []string{},
			Biological: []string{},
			Chemical:   []string{},
		},
		PreventionSummary: cls.Prevention,
	}
	if cls.Cause != "" {
		cddm.Causes = []string{cls.Cause}
	}
	if cls.Treatment != "" {
		cddm.Solutions.Chemical = []string{cls.Treatment}
	}
	return cddm
}

func causesFor(entry knowledge.Entry) []string {
	if strings.EqualFold(entry.Disease, "Healthy") {
		return []string{"No disease detected"}
	}
	return []string{"Infection by " + entry.ScientificName}
}
