package pathway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Normalizer weights pathway scores by how common each hallmark is across a
// reference pathway corpus. Hallmarks annotated on many pathways are damped
// so broad categories do not dominate narrow ones.
type Normalizer struct {
	mu             sync.Mutex
	path           string
	classifier     *Classifier
	batchSize      int
	pathwayLabels  map[string][]string
	hallmarkCounts map[string]int
}

type annotationsFile struct {
	PathwayHallmarks map[string][]string `json:"pathway_hallmarks"`
	HallmarkCounts   map[string]int      `json:"hallmark_counts"`
}

// NewNormalizer loads previously persisted annotations from path if the file
// exists. Without persisted data every normalization factor is the neutral
// 1.0.
func NewNormalizer(path string, classifier *Classifier, batchSize int) *Normalizer {
	if batchSize <= 0 {
		batchSize = 100
	}
	n := &Normalizer{
		path:           path,
		classifier:     classifier,
		batchSize:      batchSize,
		pathwayLabels:  map[string][]string{},
		hallmarkCounts: map[string]int{},
	}
	n.load()
	return n
}

func (n *Normalizer) load() {
	data, err := os.ReadFile(n.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("path", n.path).Error("failed to read hallmark annotations")
		}
		return
	}

	var parsed annotationsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.WithError(err).WithField("path", n.path).Error("failed to parse hallmark annotations")
		return
	}

	if parsed.PathwayHallmarks != nil {
		n.pathwayLabels = parsed.PathwayHallmarks
	}
	if parsed.HallmarkCounts != nil {
		n.hallmarkCounts = parsed.HallmarkCounts
	}
	log.WithFields(log.Fields{
		"pathways": len(n.pathwayLabels),
		"path":     n.path,
	}).Info("loaded hallmark annotations")
}

func (n *Normalizer) save() error {
	data, err := json.MarshalIndent(annotationsFile{
		PathwayHallmarks: n.pathwayLabels,
		HallmarkCounts:   n.hallmarkCounts,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hallmark annotations: %w", err)
	}

	if dir := filepath.Dir(n.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create annotations directory: %w", err)
		}
	}
	if err := os.WriteFile(n.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write hallmark annotations: %w", err)
	}
	return nil
}

// Precompute classifies every pathway listed in the corpus file and persists
// the resulting hallmark counts. Lines hold a pathway name and its gene list
// separated by a double tab; other lines are skipped. Returns the counts per
// hallmark.
func (n *Normalizer) Precompute(ctx context.Context, corpusPath string) (map[string]int, error) {
	if n.classifier == nil {
		return nil, fmt.Errorf("classifier required for precomputing annotations")
	}

	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pathway corpus %s: %w", corpusPath, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t\t")
		if len(parts) >= 2 {
			names = append(names, strings.TrimSpace(parts[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pathway corpus: %w", err)
	}

	log.WithFields(log.Fields{"pathways": len(names), "corpus": corpusPath}).Info("precomputing hallmark annotations")

	batches := (len(names) + n.batchSize - 1) / n.batchSize
	for i := 0; i < len(names); i += n.batchSize {
		end := i + n.batchSize
		if end > len(names) {
			end = len(names)
		}
		log.WithFields(log.Fields{"batch": i/n.batchSize + 1, "total": batches}).Info("processing pathway batch")

		batch := make(map[string]float64, end-i)
		for _, name := range names[i:end] {
			batch[name] = 0.001
		}
		results := n.classifier.ClassifyMany(ctx, batch)

		n.mu.Lock()
		for name, labels := range results {
			n.pathwayLabels[name] = labels
		}
		n.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	counts := map[string]int{}
	for _, labels := range n.pathwayLabels {
		for _, label := range labels {
			counts[label]++
		}
	}
	n.hallmarkCounts = counts

	if err := n.save(); err != nil {
		return nil, err
	}
	return copyCounts(counts), nil
}

// NormalizationFactor shrinks with the number of corpus pathways annotated
// to the hallmark, on a logarithmic scale: 1 pathway keeps 1.0, 16 pathways
// roughly halve, 100 pathways keep about a third. Hallmarks with no data
// stay at the neutral 1.0.
func (n *Normalizer) NormalizationFactor(hallmark string) float64 {
	n.mu.Lock()
	count := n.hallmarkCounts[hallmark]
	n.mu.Unlock()

	if count == 0 {
		return 1.0
	}
	return 1.0 / math.Sqrt(math.Log2(float64(count)+1)+1)
}

// NormalizeScore applies the hallmark's normalization factor to a score.
func (n *Normalizer) NormalizeScore(hallmark string, score float64) float64 {
	return score * n.NormalizationFactor(hallmark)
}

// Counts returns a copy of the persisted hallmark pathway counts.
func (n *Normalizer) Counts() map[string]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return copyCounts(n.hallmarkCounts)
}

func copyCounts(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
