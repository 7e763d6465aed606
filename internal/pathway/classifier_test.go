package pathway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hallmarks/internal/hallmarks"
)

func failingMetadata(t *testing.T) *MetadataClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return NewMetadataClient(srv.URL, 5*time.Second, testStore(t))
}

func TestClassifyParsesOracleResponse(t *testing.T) {
	oracle := &MockOracle{Response: `["Cellular_senescence", "Chronic_inflammation"]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "Autophagy (GO:0006914)")
	assert.Equal(t, []string{"Cellular_senescence", "Chronic_inflammation"}, labels)
}

func TestClassifyHandlesMarkdownFences(t *testing.T) {
	oracle := &MockOracle{Response: "Here you go:\n```json\n[\"Mitochondrial_dysfunction\"]\n```"}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Equal(t, []string{"Mitochondrial_dysfunction"}, labels)
}

func TestClassifyRepairsSloppyJSON(t *testing.T) {
	oracle := &MockOracle{Response: `['Genomic_instability', 'Telomere_attrition',]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Equal(t, []string{"Genomic_instability", "Telomere_attrition"}, labels)
}

func TestClassifyDropsNonStrings(t *testing.T) {
	oracle := &MockOracle{Response: `["Cellular_senescence", 42, {"x": 1}]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Equal(t, []string{"Cellular_senescence"}, labels)
}

func TestClassifyUnparseableDegradesToEmpty(t *testing.T) {
	oracle := &MockOracle{Response: "not json"}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Empty(t, labels)
	assert.NotNil(t, labels)
}

func TestClassifyOracleErrorDegradesToEmpty(t *testing.T) {
	oracle := &MockOracle{Err: fmt.Errorf("oracle down")}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Empty(t, labels)
}

func TestClassifyCachesSuccess(t *testing.T) {
	oracle := &MockOracle{Response: `[]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	c.Classify(context.Background(), "GO:0006914")
	c.Classify(context.Background(), "GO:0006914")

	// The empty-but-successful result was cached after the first call.
	assert.Len(t, oracle.Prompts, 1)
}

func TestClassifyDoesNotCacheFailure(t *testing.T) {
	oracle := &MockOracle{Response: "not json"}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	c.Classify(context.Background(), "GO:0006914")
	c.Classify(context.Background(), "GO:0006914")

	assert.Len(t, oracle.Prompts, 2)
}

func TestClassifyPurgesMalformedCacheEntry(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Set("pathway_analysis_GO:0006914", map[string]int{"bad": 1}))

	oracle := &MockOracle{Response: `["Loss_of_proteostasis"]`}
	c := NewClassifier(oracle, failingMetadata(t), store)

	labels := c.Classify(context.Background(), "GO:0006914")
	assert.Equal(t, []string{"Loss_of_proteostasis"}, labels)
	assert.Len(t, oracle.Prompts, 1)
}

func TestClassifyPromptListsAllHallmarks(t *testing.T) {
	oracle := &MockOracle{Response: `[]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	c.Classify(context.Background(), "Autophagy (GO:0006914)")

	require.Len(t, oracle.Prompts, 1)
	prompt := oracle.Prompts[0]
	for _, label := range []string{
		"Genomic_instability", "Telomere_attrition", "Epigenetic_alterations",
		"Loss_of_proteostasis", "Disabled_macroautophagy", "Deregulated_nutrient_sensing",
		"Mitochondrial_dysfunction", "Cellular_senescence", "Stem_cell_exhaustion",
		"Altered_intercellular_communication", "Chronic_inflammation",
	} {
		assert.Contains(t, prompt, label)
	}
	// With metadata unavailable the prompt still names the pathway.
	assert.Contains(t, prompt, "Autophagy")
	assert.True(t, strings.Contains(prompt, "JSON array of strings"))
}

func TestClassifyPromptIncludesHallmarkDescriptions(t *testing.T) {
	oracle := &MockOracle{Response: `[]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	c.Classify(context.Background(), "GO:0006914")

	require.Len(t, oracle.Prompts, 1)
	prompt := oracle.Prompts[0]
	assert.Contains(t, prompt, "detailed descriptions of each hallmark")
	for label, description := range hallmarks.Descriptions {
		assert.Contains(t, prompt, description, label)
	}
	// Spot-check that the paragraphs carry real biological context.
	assert.Contains(t, prompt, "progressive shortening of telomeres")
	assert.Contains(t, prompt, "inflammaging")
}

func TestClassifyManyCoversAllInputs(t *testing.T) {
	oracle := &MockOracle{Response: `["Chronic_inflammation"]`}
	c := NewClassifier(oracle, failingMetadata(t), testStore(t))

	pathways := map[string]float64{
		"Pathway A (GO:0000001)": 0.0001,
		"Pathway B (GO:0000002)": 0.0002,
	}
	results := c.ClassifyMany(context.Background(), pathways)

	assert.Len(t, results, 2)
	for name := range pathways {
		assert.Equal(t, []string{"Chronic_inflammation"}, results[name])
	}
}
