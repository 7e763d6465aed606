// Package model holds the disease analysis result types and the in-memory
// record store.
package model

import (
	"sort"
	"sync"
	"time"
)

// HallmarkScore captures the evidence for one hallmark of aging.
type HallmarkScore struct {
	Name             string   `json:"name"`
	GeneOverlapScore float64  `json:"gene_overlap_score"`
	PathwayScore     float64  `json:"pathway_score"`
	TotalScore       float64  `json:"total_score"`
	OverlappingGenes []string `json:"overlapping_genes"`
	RelevantPathways []string `json:"relevant_pathways"`
}

// HallmarkRank is a (hallmark, score) pair for ranked summaries.
type HallmarkRank struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DiseaseAnnotation is the complete analysis result for one disease.
type DiseaseAnnotation struct {
	Name             string                   `json:"name"`
	EFOID            string                   `json:"efo_id"`
	TargetGenes      []string                 `json:"target_genes"`
	HallmarkScores   map[string]HallmarkScore `json:"hallmark_scores"`
	LongevityGenes   []string                 `json:"longevity_genes"`
	EnrichedPathways map[string]float64       `json:"enriched_pathways"`
	TotalAgingScore  float64                  `json:"total_aging_score"`
	AnalysisDate     time.Time                `json:"analysis_date"`
}

// TopHallmarks returns the n highest-scoring hallmarks, descending.
func (d *DiseaseAnnotation) TopHallmarks(n int) []HallmarkRank {
	ranks := make([]HallmarkRank, 0, len(d.HallmarkScores))
	for _, score := range d.HallmarkScores {
		ranks = append(ranks, HallmarkRank{Name: score.Name, Score: score.TotalScore})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].Name < ranks[j].Name
	})
	if n < len(ranks) {
		ranks = ranks[:n]
	}
	return ranks
}

// DiseaseStore collects analyzed diseases, keyed by canonical id. Safe for
// concurrent use.
type DiseaseStore struct {
	mu       sync.RWMutex
	diseases map[string]*DiseaseAnnotation
}

func NewDiseaseStore() *DiseaseStore {
	return &DiseaseStore{diseases: map[string]*DiseaseAnnotation{}}
}

// Add inserts or overwrites the annotation under its canonical id.
func (s *DiseaseStore) Add(d *DiseaseAnnotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diseases[d.EFOID] = d
}

// Get returns the annotation for the canonical id, or nil.
func (s *DiseaseStore) Get(efoID string) *DiseaseAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diseases[efoID]
}

// Len reports the number of stored diseases.
func (s *DiseaseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diseases)
}

// All returns every stored annotation in unspecified order.
func (s *DiseaseStore) All() []*DiseaseAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*DiseaseAnnotation, 0, len(s.diseases))
	for _, d := range s.diseases {
		out = append(out, d)
	}
	return out
}

// ByHallmark returns diseases whose score for the hallmark exceeds minScore,
// descending by that hallmark's score.
func (s *DiseaseStore) ByHallmark(hallmark string, minScore float64) []*DiseaseAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DiseaseAnnotation
	for _, d := range s.diseases {
		if d.HallmarkScores[hallmark].TotalScore > minScore {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HallmarkScores[hallmark].TotalScore > out[j].HallmarkScores[hallmark].TotalScore
	})
	return out
}

// ByTotalScore returns diseases whose aggregate score exceeds minScore,
// descending.
func (s *DiseaseStore) ByTotalScore(minScore float64) []*DiseaseAnnotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*DiseaseAnnotation
	for _, d := range s.diseases {
		if d.TotalAgingScore > minScore {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalAgingScore > out[j].TotalAgingScore
	})
	return out
}
