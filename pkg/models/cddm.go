package models

// SolutionSet groups treatment options by intervention category.
type SolutionSet struct {
	Cultural   []string `json:"cultural"`
	Biological []string `json:"biological"`
	Chemical   []string `json:"chemical"`
}

// CDDM is the Crop Disease Description Model: the canonical enriched
// diagnosis built once per prediction and never mutated afterwards.
type CDDM struct {
	ImageID           string      `json:"image_id"`
	Crop              string      `json:"crop"`
	DiseaseName       string      `json:"disease_name"`
	ScientificName    string      `json:"scientific_name"`
	Symptoms          []string    `json:"symptoms"`
	Causes            []string    `json:"causes"`
	Solutions         SolutionSet `json:"solutions"`
	PreventionSummary string      `json:"prevention_summary"`
}
