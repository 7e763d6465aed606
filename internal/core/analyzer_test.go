package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hallmarks/internal/cache"
	"github.com/agenthands/hallmarks/internal/config"
	"github.com/agenthands/hallmarks/internal/core/model"
	"github.com/agenthands/hallmarks/internal/core/scorer"
	"github.com/agenthands/hallmarks/internal/enrichr"
	"github.com/agenthands/hallmarks/internal/ontology"
	"github.com/agenthands/hallmarks/internal/opentargets"
	"github.com/agenthands/hallmarks/internal/pathway"
)

// fixtureServices fakes OLS, Open Targets, Enrichr, and QuickGO behind one
// test server, with one known disease wired through the whole pipeline.
func fixtureServices(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/ols/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "progeria" {
			fmt.Fprint(w, `{"response":{"docs":[{"ontology_name":"efo","short_form":"EFO_0002964","label":"progeria"}]}}`)
			return
		}
		fmt.Fprint(w, `{"response":{"docs":[]}}`)
	})

	mux.HandleFunc("/ot/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				EFOID string `json:"efoId"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Variables.EFOID != "EFO_0002964" {
			fmt.Fprint(w, `{"data":{"disease":null}}`)
			return
		}
		fmt.Fprint(w, `{"data":{"disease":{"associatedTargets":{"count":3,"rows":[
			{"target":{"approvedSymbol":"LMNA"},"score":0.95},
			{"target":{"approvedSymbol":"WRN"},"score":0.8},
			{"target":{"approvedSymbol":"ZMPSTE24"},"score":0.1}
		]}}}}`)
	})

	mux.HandleFunc("/enrichr/addList", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"userListId": 777}`)
	})
	mux.HandleFunc("/enrichr/enrich", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"GO_Biological_Process_2023": [
			[1, "DNA repair (GO:0006281)", 0.00001, 5.0, 50.0, ["LMNA","WRN","ATM"], 0.0001]
		]}`)
	})

	mux.HandleFunc("/quickgo/ontology/go/terms/GO:0006281", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"name":"DNA repair","definition":{"text":"Restoration of DNA."},"children":[]}]}`)
	})
	mux.HandleFunc("/quickgo/annotation/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"symbol":"ATM","geneProductId":"UniProtKB:Q13315"}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fixtureAnalyzer(t *testing.T, oracle *pathway.MockOracle) *Analyzer {
	t.Helper()
	srv := fixtureServices(t)

	store, err := cache.Open(filepath.Join(t.TempDir(), "lookups.db"), 3600)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	timeout := 5 * time.Second
	resolver := ontology.NewResolver(srv.URL+"/ols", timeout, store)
	targets := opentargets.NewClient(srv.URL+"/ot", timeout, 1, 0, store)
	enrichment := enrichr.NewClient(srv.URL+"/enrichr", "GO_Biological_Process_2023", timeout, 1, 0, store)
	metadata := pathway.NewMetadataClient(srv.URL+"/quickgo", timeout, store)
	classifier := pathway.NewClassifier(oracle, metadata, store)
	normalizer := pathway.NewNormalizer(filepath.Join(t.TempDir(), "annotations.json"), classifier, 100)

	return NewAnalyzer(
		resolver,
		targets,
		enrichment,
		classifier,
		scorer.New(normalizer),
		model.NewDiseaseStore(),
		config.Default().Analysis,
	)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	oracle := &pathway.MockOracle{Response: `["Genomic_instability"]`}
	a := fixtureAnalyzer(t, oracle)

	annotation, err := a.Analyze(context.Background(), "progeria")
	require.NoError(t, err)

	assert.Equal(t, "EFO_0002964", annotation.EFOID)
	// ZMPSTE24 falls below the 0.2 association threshold.
	assert.Equal(t, []string{"LMNA", "WRN"}, annotation.TargetGenes)
	assert.Equal(t, map[string]float64{"DNA repair (GO:0006281)": 0.00001}, annotation.EnrichedPathways)
	assert.Len(t, annotation.HallmarkScores, 11)

	gi := annotation.HallmarkScores["Genomic instability"]
	assert.Greater(t, gi.PathwayScore, 0.0)
	assert.Equal(t, []string{"DNA repair (GO:0006281)"}, gi.RelevantPathways)
	assert.Contains(t, gi.OverlappingGenes, "LMNA")

	// WRN and LMNA are both in the longevity reference set.
	assert.Contains(t, annotation.LongevityGenes, "WRN")
	assert.Greater(t, annotation.TotalAgingScore, 0.0)
	assert.False(t, annotation.AnalysisDate.IsZero())

	// The result landed in the record store under its canonical id.
	assert.Equal(t, annotation, a.Store().Get("EFO_0002964"))
}

func TestAnalyzeUnknownDisease(t *testing.T) {
	a := fixtureAnalyzer(t, &pathway.MockOracle{Response: `[]`})

	_, err := a.Analyze(context.Background(), "imaginary disease")
	assert.ErrorIs(t, err, ontology.ErrNotFound)
	assert.Equal(t, 0, a.Store().Len())
}

func TestAnalyzeClassifierFailureStillScores(t *testing.T) {
	// An oracle outage degrades classification to empty, never aborts.
	oracle := &pathway.MockOracle{Err: fmt.Errorf("oracle down")}
	a := fixtureAnalyzer(t, oracle)

	annotation, err := a.Analyze(context.Background(), "progeria")
	require.NoError(t, err)
	assert.Len(t, annotation.HallmarkScores, 11)
	assert.Empty(t, annotation.HallmarkScores["Genomic instability"].RelevantPathways)
}

func TestCompareSkipsUnknownDiseases(t *testing.T) {
	oracle := &pathway.MockOracle{Response: `["Genomic_instability"]`}
	a := fixtureAnalyzer(t, oracle)

	results, err := a.Compare(context.Background(), []string{"progeria", "imaginary disease"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "EFO_0002964", results["progeria"].EFOID)
}
