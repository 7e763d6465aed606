// Package core orchestrates the disease analysis pipeline: resolve the
// disease name, fetch associated genes, enrich pathways, classify them
// against the hallmarks of aging, and score the result.
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/hallmarks/internal/config"
	"github.com/agenthands/hallmarks/internal/core/model"
	"github.com/agenthands/hallmarks/internal/core/scorer"
	"github.com/agenthands/hallmarks/internal/enrichr"
	"github.com/agenthands/hallmarks/internal/hallmarks"
	"github.com/agenthands/hallmarks/internal/ontology"
	"github.com/agenthands/hallmarks/internal/opentargets"
	"github.com/agenthands/hallmarks/internal/pathway"
)

// ErrNoTargets means the disease resolved but has no qualifying associated
// genes. Like ontology.ErrNotFound it is a normal outcome, not a failure.
var ErrNoTargets = errors.New("no target genes found for disease")

const compareConcurrency = 4

// Analyzer runs the full pipeline for one disease at a time. Independent
// analyses may run concurrently; all shared state is internally locked.
type Analyzer struct {
	resolver   *ontology.Resolver
	targets    *opentargets.Client
	enrichment *enrichr.Client
	classifier *pathway.Classifier
	scorer     *scorer.Scorer
	store      *model.DiseaseStore
	cfg        config.AnalysisConfig
}

func NewAnalyzer(
	resolver *ontology.Resolver,
	targets *opentargets.Client,
	enrichment *enrichr.Client,
	classifier *pathway.Classifier,
	sc *scorer.Scorer,
	store *model.DiseaseStore,
	cfg config.AnalysisConfig,
) *Analyzer {
	return &Analyzer{
		resolver:   resolver,
		targets:    targets,
		enrichment: enrichment,
		classifier: classifier,
		scorer:     sc,
		store:      store,
		cfg:        cfg,
	}
}

// Store exposes the record store of completed analyses.
func (a *Analyzer) Store() *model.DiseaseStore {
	return a.store
}

// Analyze runs the pipeline for one disease name and records the result.
// A disease that cannot be resolved returns ontology.ErrNotFound; one with
// no qualifying genes returns ErrNoTargets. Both short-circuit without an
// annotation.
func (a *Analyzer) Analyze(ctx context.Context, diseaseName string) (*model.DiseaseAnnotation, error) {
	runID := uuid.NewString()
	logger := log.WithFields(log.Fields{"run_id": runID, "disease": diseaseName})
	logger.Info("starting disease analysis")

	efoID, err := a.resolver.Resolve(ctx, diseaseName)
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("efo_id", efoID)

	targetGenes, err := a.targets.FetchTargets(ctx, efoID, a.cfg.MaxTargets, a.cfg.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("fetching targets for %s: %w", diseaseName, err)
	}
	if len(targetGenes) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoTargets, diseaseName, efoID)
	}
	logger.WithField("targets", len(targetGenes)).Info("fetched disease targets")

	enriched, err := a.enrichment.Enrich(ctx, targetGenes, a.cfg.PValueThreshold, a.cfg.MinOverlap)
	if err != nil {
		return nil, fmt.Errorf("enriching pathways for %s: %w", diseaseName, err)
	}
	if len(enriched) == 0 {
		logger.Info("no significantly enriched pathways")
	}

	pathwayLabels := a.classifier.ClassifyMany(ctx, enriched)

	longevity := longevityOverlap(targetGenes)
	scores := a.scorer.Score(targetGenes, enriched, pathwayLabels)
	total := scorer.TotalScore(scores, len(longevity))

	annotation := &model.DiseaseAnnotation{
		Name:             diseaseName,
		EFOID:            efoID,
		TargetGenes:      targetGenes,
		HallmarkScores:   scores,
		LongevityGenes:   longevity,
		EnrichedPathways: enriched,
		TotalAgingScore:  total,
		AnalysisDate:     time.Now(),
	}
	a.store.Add(annotation)

	logger.WithFields(log.Fields{
		"pathways":    len(enriched),
		"longevity":   len(longevity),
		"total_score": total,
	}).Info("disease analysis complete")
	return annotation, nil
}

// Compare analyzes several diseases concurrently and returns the successful
// annotations keyed by disease name. Diseases that resolve to nothing or
// have no targets are skipped; any other failure aborts the comparison.
func (a *Analyzer) Compare(ctx context.Context, diseaseNames []string) (map[string]*model.DiseaseAnnotation, error) {
	results := make(map[string]*model.DiseaseAnnotation, len(diseaseNames))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)

	for _, name := range diseaseNames {
		name := name
		g.Go(func() error {
			annotation, err := a.Analyze(ctx, name)
			if err != nil {
				if errors.Is(err, ontology.ErrNotFound) || errors.Is(err, ErrNoTargets) {
					log.WithError(err).WithField("disease", name).Warn("skipping disease in comparison")
					return nil
				}
				return err
			}
			mu.Lock()
			results[name] = annotation
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func longevityOverlap(targetGenes []string) []string {
	ref := hallmarks.LongevityGenes()
	overlap := []string{}
	for _, g := range targetGenes {
		if ref[g] {
			overlap = append(overlap, g)
		}
	}
	sort.Strings(overlap)
	return overlap
}
