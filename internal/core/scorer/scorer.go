// Package scorer turns gene overlap and classified pathway enrichment into
// per-hallmark scores and a disease-level aggregate. The numeric constants
// are frozen design parameters; changing any of them changes every score in
// the system.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agenthands/hallmarks/internal/core/model"
	"github.com/agenthands/hallmarks/internal/hallmarks"
	"github.com/agenthands/hallmarks/internal/pathway"
)

const (
	geneWeight    = 0.3
	pathwayWeight = 0.7
	// The normalization factor damps, never eliminates.
	normalizationFloor = 0.5
)

// Scorer computes hallmark scores. Results are memoized per process on the
// reduced (genes, pathways) input, unbounded for the run's lifetime. Safe
// for concurrent use.
type Scorer struct {
	geneSets   map[string]map[string]bool
	normalizer *pathway.Normalizer

	mu   sync.Mutex
	memo map[string]map[string]model.HallmarkScore
}

func New(normalizer *pathway.Normalizer) *Scorer {
	return &Scorer{
		geneSets:   hallmarks.GeneSets(),
		normalizer: normalizer,
		memo:       map[string]map[string]model.HallmarkScore{},
	}
}

// Score computes a HallmarkScore for each of the eleven hallmarks.
// pathwayLabels maps each enriched pathway to its classified hallmark
// labels. The returned map always carries exactly the eleven hallmark keys;
// identical inputs return identical results via the memo table.
func (s *Scorer) Score(diseaseGenes []string, enrichedPathways map[string]float64, pathwayLabels map[string][]string) map[string]model.HallmarkScore {
	key := memoKey(diseaseGenes, enrichedPathways)

	s.mu.Lock()
	if cached, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return copyScores(cached)
	}
	s.mu.Unlock()

	scores := s.compute(diseaseGenes, enrichedPathways, pathwayLabels)

	s.mu.Lock()
	s.memo[key] = scores
	s.mu.Unlock()
	return copyScores(scores)
}

func (s *Scorer) compute(diseaseGenes []string, enrichedPathways map[string]float64, pathwayLabels map[string][]string) map[string]model.HallmarkScore {
	geneSet := make(map[string]bool, len(diseaseGenes))
	for _, g := range diseaseGenes {
		geneSet[g] = true
	}

	scores := make(map[string]model.HallmarkScore, len(hallmarks.Names))
	for _, name := range hallmarks.Names {
		label, _ := hallmarks.LabelForName(name)
		ref := s.geneSets[name]

		overlapping := []string{}
		for g := range ref {
			if geneSet[g] {
				overlapping = append(overlapping, g)
			}
		}
		sort.Strings(overlapping)

		geneScore := 0.0
		if len(ref) > 0 {
			geneScore = float64(len(overlapping)) / float64(len(ref))
		}

		weightSum := 0.0
		pathwayCount := 0
		relevant := []string{}
		for pw, labels := range pathwayLabels {
			if !contains(labels, label) {
				continue
			}
			p := enrichedPathways[pw]
			if p > 0 {
				weightSum += -math.Log10(p)
			}
			pathwayCount++
			relevant = append(relevant, pw)
		}
		sort.Strings(relevant)

		pathwayScore := 0.0
		if pathwayCount > 0 {
			avg := weightSum / float64(pathwayCount)
			pathwayScore = avg * math.Max(s.normalizer.NormalizationFactor(label), normalizationFloor)

			// Diminishing bonus for multiple contributing pathways,
			// saturating around 15.
			bonus := math.Min(math.Log2(float64(pathwayCount)+1)/4, 1.0)
			pathwayScore *= 1 + bonus
		}

		rawTotal := geneScore*geneWeight + pathwayScore*pathwayWeight

		// Independent diversity reward, near 1.0 at 9 pathways, capped.
		diversity := math.Min(math.Sqrt(float64(pathwayCount)+1)/math.Sqrt(10), 1.5)

		scores[name] = model.HallmarkScore{
			Name:             name,
			GeneOverlapScore: geneScore,
			PathwayScore:     pathwayScore,
			TotalScore:       rawTotal * diversity,
			OverlappingGenes: overlapping,
			RelevantPathways: relevant,
		}
	}
	return scores
}

// TotalScore aggregates the eleven hallmark scores into one disease-level
// number, rewarding strength, breadth, and evenness of the hallmark profile,
// with at most a 20% uplift for longevity gene overlap.
func TotalScore(scores map[string]model.HallmarkScore, longevityOverlap int) float64 {
	if len(scores) == 0 {
		return 0
	}

	nonZero := 0
	sum := 0.0
	for _, s := range scores {
		if s.TotalScore > 0 {
			nonZero++
		}
		sum += s.TotalScore
	}
	mean := sum / float64(len(scores))

	entropy := 0.0
	if sum > 0 {
		for _, s := range scores {
			if s.TotalScore > 0 {
				p := s.TotalScore / sum
				entropy -= p * math.Log(p)
			}
		}
	}
	normalizedEntropy := 0.0
	if nonZero > 1 {
		normalizedEntropy = entropy / math.Log(float64(nonZero))
	}

	breadth := (float64(nonZero) / float64(len(scores))) * (1 + math.Log2(float64(nonZero)+1)/4)
	representativeness := mean * (1 + breadth) * (1 + normalizedEntropy)
	total := mean * (1 + representativeness)

	longevityFactor := math.Min(float64(longevityOverlap)/20, 1.0)
	return total * (1 + 0.2*longevityFactor)
}

func memoKey(genes []string, pathways map[string]float64) string {
	sortedGenes := append([]string(nil), genes...)
	sort.Strings(sortedGenes)

	names := make([]string, 0, len(pathways))
	for name := range pathways {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, g := range sortedGenes {
		b.WriteString(g)
		b.WriteByte('\n')
	}
	b.WriteString("||\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%g\n", name, pathways[name])
	}
	return b.String()
}

// copyScores deep-copies the slice fields so callers cannot mutate the memo
// table through a returned result.
func copyScores(scores map[string]model.HallmarkScore) map[string]model.HallmarkScore {
	out := make(map[string]model.HallmarkScore, len(scores))
	for k, v := range scores {
		v.OverlappingGenes = append(make([]string, 0, len(v.OverlappingGenes)), v.OverlappingGenes...)
		v.RelevantPathways = append(make([]string, 0, len(v.RelevantPathways)), v.RelevantPathways...)
		out[k] = v
	}
	return out
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
