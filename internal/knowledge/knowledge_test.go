package knowledge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropcareai/cropcare/internal/knowledge"
)

func TestDefault_OneHealthyEntryPerCrop(t *testing.T) {
	table := knowledge.Default()

	healthy := map[string]int{}
	diseased := map[string]int{}
	for _, e := range table.Entries() {
		if strings.EqualFold(e.Disease, "Healthy") {
			healthy[e.Crop]++
		} else {
			diseased[e.Crop]++
		}
	}

	require.NotEmpty(t, healthy)
	for crop, n := range healthy {
		assert.Equal(t, 1, n, "crop %s must have exactly one Healthy entry", crop)
		assert.GreaterOrEqual(t, diseased[crop], 1, "crop %s must have at least one disease entry", crop)
	}
}

func TestDefault_EntriesComplete(t *testing.T) {
	table := knowledge.Default()
	require.Equal(t, 10, table.Len())

	for _, e := range table.Entries() {
		assert.NotEmpty(t, e.Crop)
		assert.NotEmpty(t, e.Disease)
		assert.NotEmpty(t, e.ScientificName)
		assert.NotEmpty(t, e.Prompt)
		assert.NotEmpty(t, e.Symptoms)
		assert.NotEmpty(t, e.Precautions)
	}
}

func TestPrompts_AlignedWithEntries(t *testing.T) {
	table := knowledge.Default()
	prompts := table.Prompts()
	require.Len(t, prompts, table.Len())

	for i, p := range prompts {
		assert.Equal(t, table.At(i).Prompt, p)
	}
}

func TestLookup(t *testing.T) {
	table := knowledge.Default()

	entry, ok := table.Lookup("Tomato", "Early Blight")
	require.True(t, ok)
	assert.Equal(t, "Alternaria solani", entry.ScientificName)
	assert.Equal(t, "tomato leaf with early blight disease", entry.Prompt)

	// Case-insensitive
	entry, ok = table.Lookup("tomato", "early blight")
	require.True(t, ok)
	assert.Equal(t, "Tomato", entry.Crop)

	_, ok = table.Lookup("Wheat", "Rust")
	assert.False(t, ok)
}

func TestNew_CopiesEntries(t *testing.T) {
	entries := []knowledge.Entry{
		{Crop: "Tomato", Disease: "Healthy", Prompt: "healthy tomato leaf"},
	}
	table := knowledge.New(entries)

	entries[0].Crop = "mutated"
	assert.Equal(t, "Tomato", table.At(0).Crop)
}
