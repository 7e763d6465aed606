package core

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/hallmarks/internal/cache"
	"github.com/agenthands/hallmarks/internal/config"
	"github.com/agenthands/hallmarks/internal/core/model"
	"github.com/agenthands/hallmarks/internal/core/scorer"
	"github.com/agenthands/hallmarks/internal/enrichr"
	"github.com/agenthands/hallmarks/internal/llm"
	"github.com/agenthands/hallmarks/internal/ontology"
	"github.com/agenthands/hallmarks/internal/opentargets"
	"github.com/agenthands/hallmarks/internal/pathway"
)

// Pipeline bundles the fully wired analysis components for an entrypoint.
type Pipeline struct {
	Analyzer   *Analyzer
	Cache      *cache.Store
	Normalizer *pathway.Normalizer
}

// BuildPipeline constructs every component from configuration: cache store,
// oracle client, service clients, normalizer, scorer, and the analyzer on
// top. The caller owns Close.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening lookup cache: %w", err)
	}

	oracle, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing oracle client: %w", err)
	}

	timeout := time.Duration(cfg.Services.TimeoutSeconds) * time.Second
	retryDelay := time.Duration(cfg.Services.RetryDelaySeconds) * time.Second

	resolver := ontology.NewResolver(cfg.Services.OLSBaseURL, timeout, store)
	targets := opentargets.NewClient(cfg.Services.OpenTargetsBaseURL, timeout, cfg.Services.MaxRetries, retryDelay, store)
	enrichment := enrichr.NewClient(cfg.Services.EnrichrBaseURL, cfg.Analysis.GeneSetLibrary, timeout, cfg.Services.MaxRetries, retryDelay, store)
	metadata := pathway.NewMetadataClient(cfg.Services.QuickGOBaseURL, timeout, store)
	classifier := pathway.NewClassifier(oracle, metadata, store)
	normalizer := pathway.NewNormalizer(cfg.Normalizer.AnnotationsPath, classifier, cfg.Normalizer.BatchSize)

	analyzer := NewAnalyzer(
		resolver,
		targets,
		enrichment,
		classifier,
		scorer.New(normalizer),
		model.NewDiseaseStore(),
		cfg.Analysis,
	)

	return &Pipeline{Analyzer: analyzer, Cache: store, Normalizer: normalizer}, nil
}

// Close releases the pipeline's resources.
func (p *Pipeline) Close() error {
	return p.Cache.Close()
}
