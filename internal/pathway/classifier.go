package pathway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
	"github.com/agenthands/hallmarks/internal/hallmarks"
	"github.com/agenthands/hallmarks/internal/llm"
)

const maxPromptGenes = 20
const maxPromptTerms = 10

// Classifier asks the oracle which aging hallmarks a pathway belongs to.
// Classification is best effort: any oracle or parse failure yields an empty
// list so a single bad pathway never aborts a whole analysis.
type Classifier struct {
	oracle   llm.Client
	metadata *MetadataClient
	cache    *cache.Store
}

func NewClassifier(oracle llm.Client, metadata *MetadataClient, store *cache.Store) *Classifier {
	return &Classifier{oracle: oracle, metadata: metadata, cache: store}
}

// Classify returns the hallmark labels associated with the pathway. Results
// are cached, including genuinely empty ones; a cached entry that does not
// decode as a string list has already been purged by the cache layer, so the
// pathway is simply recomputed.
func (c *Classifier) Classify(ctx context.Context, pathway string) []string {
	key := fmt.Sprintf("pathway_analysis_%s", pathway)

	var cached []string
	if c.cache.Get(key, &cached) {
		if cached == nil {
			cached = []string{}
		}
		return cached
	}

	labels, ok := c.classify(ctx, pathway)

	// Failures are not cached so a transient oracle outage can recover.
	if ok {
		if err := c.cache.Set(key, labels); err != nil {
			log.WithError(err).WithField("pathway", pathway).Warn("failed to cache classification")
		}
	}
	return labels
}

func (c *Classifier) classify(ctx context.Context, pathway string) ([]string, bool) {
	info, err := c.metadata.Inspect(ctx, pathway)
	if err != nil {
		log.WithError(err).WithField("pathway", pathway).Warn("pathway metadata lookup failed")
		_, name := ExtractGOID(pathway)
		if name == "" {
			name = pathway
		}
		info = Info{Label: name}
	}

	response, err := c.oracle.Generate(ctx, buildPrompt(pathway, info))
	if err != nil {
		log.WithError(err).WithField("pathway", pathway).Warn("oracle classification failed")
		return []string{}, false
	}

	labels, err := parseHallmarkList(response)
	if err != nil {
		log.WithError(err).WithField("pathway", pathway).Warn("unparseable classification response")
		return []string{}, false
	}
	return labels, true
}

// ClassifyMany maps each enriched pathway to its hallmark labels.
func (c *Classifier) ClassifyMany(ctx context.Context, pathways map[string]float64) map[string][]string {
	results := make(map[string][]string, len(pathways))
	for pathway := range pathways {
		results[pathway] = c.Classify(ctx, pathway)
	}
	return results
}

func buildPrompt(pathway string, info Info) string {
	var b strings.Builder

	label := info.Label
	if label == "" {
		label = pathway
	}
	goID := info.ID
	if goID == "" {
		goID = "Unknown"
	}
	definition := info.Definition
	if definition == "" {
		definition = "No definition available"
	}

	fmt.Fprintf(&b, `You are an expert in aging biology and pathway analysis. Your task is to analyze a biological pathway and determine which hallmarks of aging it is associated with.

Pathway: %s
GO ID: %s
Definition: %s

`, label, goID, definition)

	if len(info.Genes) > 0 {
		symbols := make([]string, 0, len(info.Genes))
		for _, g := range info.Genes {
			if g.Symbol == "" {
				continue
			}
			if g.ID != "" {
				symbols = append(symbols, fmt.Sprintf("%s (%s)", g.Symbol, g.ID))
			} else {
				symbols = append(symbols, g.Symbol)
			}
		}
		if len(symbols) > 0 {
			shown := symbols
			if len(shown) > maxPromptGenes {
				shown = shown[:maxPromptGenes]
			}
			fmt.Fprintf(&b, "Genes involved in this pathway: %s", strings.Join(shown, ", "))
			if extra := len(symbols) - maxPromptGenes; extra > 0 {
				fmt.Fprintf(&b, " and %d more genes", extra)
			}
			b.WriteString("\n\n")
		}
	}

	var labeled []RelatedTerm
	for _, term := range info.RelatedTerms {
		if term.Label != "" && term.Label != "Unknown" {
			labeled = append(labeled, term)
		}
	}
	if len(labeled) > 0 {
		b.WriteString("Related biological processes and functions:\n")
		shown := labeled
		if len(shown) > maxPromptTerms {
			shown = shown[:maxPromptTerms]
		}
		for _, term := range shown {
			rel := term.Relationship
			if rel == "" {
				rel = "related"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", term.Label, rel)
		}
		if extra := len(labeled) - maxPromptTerms; extra > 0 {
			fmt.Fprintf(&b, "- And %d more related terms\n", extra)
		}
		b.WriteString("\n")
	}

	b.WriteString("Based on the pathway information above, determine which hallmarks of aging are associated with this pathway. The hallmarks of aging are:\n\n")
	for i, label := range hallmarks.Labels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	b.WriteString("\nHere are detailed descriptions of each hallmark to guide your analysis:\n\n")
	for i, label := range hallmarks.Labels {
		fmt.Fprintf(&b, "## %d. %s\n%s\n\n", i+1, label, hallmarks.Descriptions[label])
	}
	b.WriteString(`Respond with a list of hallmarks that are associated with this pathway.
If there are no clear associations, return an empty list.
Format your response as a JSON array of strings.
`)
	return b.String()
}

var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// parseHallmarkList extracts a JSON string array from oracle output, which
// may be wrapped in markdown fences or prose. A single repair pass fixes
// trailing commas and single-quoted strings before giving up.
func parseHallmarkList(response string) ([]string, error) {
	text := response
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	text = text[start : end+1]

	if labels, err := decodeStringList(text); err == nil {
		return labels, nil
	}

	repaired := trailingComma.ReplaceAllString(text, "$1")
	repaired = strings.ReplaceAll(repaired, "'", `"`)
	labels, err := decodeStringList(repaired)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal hallmark list: %w", err)
	}
	return labels, nil
}

func decodeStringList(text string) ([]string, error) {
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	labels := []string{}
	for _, item := range items {
		if s, ok := item.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels, nil
}
