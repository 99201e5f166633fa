// Package knowledge holds the static crop disease reference table. The table
// is built once at startup and never mutated; every classifier label maps to
// exactly one entry.
package knowledge

import "strings"

// Entry describes one crop/disease label: the text prompt it is matched
// against and the reference text used to enrich a diagnosis.
type Entry struct {
	Crop           string
	Disease        string
	ScientificName string
	Prompt         string
	Symptoms       []string
	Precautions    []string
}

// Table is an immutable collection of entries.
type Table struct {
	entries []Entry
}

// New builds a table from the given entries.
func New(entries []Entry) *Table {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return &Table{entries: copied}
}

// Entries returns all entries in label order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// At returns the entry at index i. Index order matches Prompts().
func (t *Table) At(i int) Entry { return t.entries[i] }

// Prompts returns the matching prompt for every entry, in index order.
func (t *Table) Prompts() []string {
	prompts := make([]string, len(t.entries))
	for i, e := range t.entries {
		prompts[i] = e.Prompt
	}
	return prompts
}

// Lookup finds the entry for a crop/disease pair, matching case-insensitively.
// The second return is false when no entry exists.
func (t *Table) Lookup(crop, disease string) (Entry, bool) {
	for _, e := range t.entries {
		if strings.EqualFold(e.Crop, crop) && strings.EqualFold(e.Disease, disease) {
			return e, true
		}
	}
	return Entry{}, false
}

// Default returns the built-in disease table: five crops, each with one
// Healthy entry and the field diseases the model is trained to recognize.
func Default() *Table {
	return New([]Entry{
		{
			Crop:           "Tomato",
			Disease:        "Early Blight",
			ScientificName: "Alternaria solani",
			Prompt:         "tomato leaf with early blight disease",
			Symptoms: []string{
				"yellow spots on leaves",
				"brown concentric rings",
				"leaf drying and falling",
			},
			Precautions: []string{
				"use disease-free seeds",
				"avoid overhead irrigation",
				"apply copper-based fungicide",
			},
		},
		{
			Crop:           "Tomato",
			Disease:        "Healthy",
			ScientificName: "Solanum lycopersicum",
			Prompt:         "healthy tomato leaf",
			Symptoms: []string{
				"green leaves",
				"no spots or discoloration",
			},
			Precautions: []string{
				"maintain proper watering",
				"ensure balanced fertilization",
			},
		},
		{
			Crop:           "Potato",
			Disease:        "Late Blight",
			ScientificName: "Phytophthora infestans",
			Prompt:         "potato leaf with late blight disease",
			Symptoms: []string{
				"dark water-soaked lesions",
				"white fungal growth under leaf",
				"rapid leaf wilting",
			},
			Precautions: []string{
				"remove infected plants",
				"use resistant varieties",
				"apply fungicides like mancozeb",
			},
		},
		{
			Crop:           "Potato",
			Disease:        "Healthy",
			ScientificName: "Solanum tuberosum",
			Prompt:         "healthy potato leaf",
			Symptoms: []string{
				"uniform green color",
				"no visible lesions",
			},
			Precautions: []string{
				"proper spacing",
				"regular field monitoring",
			},
		},
		{
			Crop:           "Banana",
			Disease:        "Black Sigatoka",
			ScientificName: "Mycosphaerella fijiensis",
			Prompt:         "banana leaf with black sigatoka disease",
			Symptoms: []string{
				"dark streaks on leaves",
				"yellowing of leaf margins",
				"reduced photosynthesis",
			},
			Precautions: []string{
				"remove infected leaves",
				"ensure proper air circulation",
				"apply systemic fungicides",
			},
		},
		{
			Crop:           "Banana",
			Disease:        "Healthy",
			ScientificName: "Musa species",
			Prompt:         "healthy banana leaf",
			Symptoms: []string{
				"broad green leaves",
				"no dark streaks",
			},
			Precautions: []string{
				"regular pruning",
				"balanced nutrient supply",
			},
		},
		{
			Crop:           "Apple",
			Disease:        "Apple Scab",
			ScientificName: "Venturia inaequalis",
			Prompt:         "apple leaf with apple scab disease",
			Symptoms: []string{
				"olive green spots",
				"leaf curling",
				"premature leaf drop",
			},
			Precautions: []string{
				"remove fallen leaves",
				"use resistant cultivars",
				"apply sulfur fungicides",
			},
		},
		{
			Crop:           "Apple",
			Disease:        "Healthy",
			ScientificName: "Malus domestica",
			Prompt:         "healthy apple leaf",
			Symptoms: []string{
				"smooth green leaves",
				"no spots",
			},
			Precautions: []string{
				"regular pruning",
				"adequate sunlight exposure",
			},
		},
		{
			Crop:           "Rice",
			Disease:        "Blast Disease",
			ScientificName: "Magnaporthe oryzae",
			Prompt:         "rice leaf with blast disease",
			Symptoms: []string{
				"diamond-shaped lesions",
				"gray center with brown margin",
				"leaf drying",
			},
			Precautions: []string{
				"avoid excess nitrogen fertilizer",
				"ensure proper field drainage",
				"use blast-resistant varieties",
			},
		},
		{
			Crop:           "Rice",
			Disease:        "Healthy",
			ScientificName: "Oryza sativa",
			Prompt:         "healthy rice leaf",
			Symptoms: []string{
				"long green leaves",
				"no lesions",
			},
			Precautions: []string{
				"maintain optimal water levels",
				"apply balanced fertilizer",
			},
		},
	})
}
