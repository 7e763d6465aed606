// Package pathway classifies enriched biological pathways against the eleven
// hallmarks of aging, using GO term metadata and a generative oracle.
package pathway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
)

var goIDInParens = regexp.MustCompile(`\(GO:(\d+)\)`)
var digitsOnly = regexp.MustCompile(`^\d+$`)

// Gene is one annotated gene product for a GO term.
type Gene struct {
	Symbol string `json:"gene_symbol"`
	ID     string `json:"gene_id"`
}

// RelatedTerm is a child GO term.
type RelatedTerm struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Relationship string `json:"relationship"`
}

// Info is the metadata gathered for one pathway.
type Info struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Definition   string        `json:"definition"`
	Genes        []Gene        `json:"annotations"`
	RelatedTerms []RelatedTerm `json:"related_terms"`
}

// MetadataClient looks up GO term information through the QuickGO service.
// A single instance is shared across the process; repeated lookups for the
// same pathway hit an in-memory map before the persistent cache.
type MetadataClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Store

	mu   sync.Mutex
	memo map[string]Info
}

func NewMetadataClient(baseURL string, timeout time.Duration, store *cache.Store) *MetadataClient {
	return &MetadataClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		memo:       map[string]Info{},
	}
}

// ExtractGOID pulls a GO identifier out of a pathway reference. The reference
// may be a bare id ("GO:0006915"), bare digits, or an enrichment term name
// with the id in parentheses ("Autophagy (GO:0006914)"). The second return
// value is the display name portion, empty when the input is id-only.
func ExtractGOID(pathway string) (goID, name string) {
	if m := goIDInParens.FindStringSubmatch(pathway); m != nil {
		return "GO:" + m[1], strings.TrimSpace(strings.SplitN(pathway, "(GO:", 2)[0])
	}
	if strings.HasPrefix(pathway, "GO:") {
		return pathway, ""
	}
	if digitsOnly.MatchString(pathway) {
		return "GO:" + pathway, ""
	}
	return "", pathway
}

// Inspect gathers label, definition, annotated human genes, and child terms
// for the pathway. Lookups are memoized per process and persisted in the
// shared cache.
func (m *MetadataClient) Inspect(ctx context.Context, pathway string) (Info, error) {
	m.mu.Lock()
	if info, ok := m.memo[pathway]; ok {
		m.mu.Unlock()
		return info, nil
	}
	m.mu.Unlock()

	key := fmt.Sprintf("quickgo_pathway_%s", pathway)
	info, err := cache.Fetch(m.cache, key, func() (Info, error) {
		return m.inspect(ctx, pathway)
	})
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	m.memo[pathway] = info
	m.mu.Unlock()
	return info, nil
}

func (m *MetadataClient) inspect(ctx context.Context, pathway string) (Info, error) {
	goID, name := ExtractGOID(pathway)

	if goID == "" {
		found, err := m.searchTerm(ctx, name)
		if err != nil {
			return Info{}, fmt.Errorf("error searching GO term for %q: %w", name, err)
		}
		if found == "" {
			return Info{}, fmt.Errorf("no GO term found for pathway %q", name)
		}
		goID = found
	}

	info := Info{ID: goID, Label: name}

	if err := m.fetchTerm(ctx, goID, &info); err != nil {
		return Info{}, err
	}
	if err := m.fetchAnnotations(ctx, goID, &info); err != nil {
		// Gene annotations enrich the prompt but the term itself is enough.
		log.WithError(err).WithField("go_id", goID).Warn("could not fetch gene annotations")
	}
	return info, nil
}

func (m *MetadataClient) searchTerm(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("query", name)
	q.Set("limit", "5")
	q.Set("page", "1")

	var parsed struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := m.getJSON(ctx, fmt.Sprintf("%s/search?%s", m.baseURL, q.Encode()), &parsed); err != nil {
		return "", err
	}

	for _, r := range parsed.Results {
		if strings.HasPrefix(r.ID, "GO:") {
			return r.ID, nil
		}
	}
	return "", nil
}

func (m *MetadataClient) fetchTerm(ctx context.Context, goID string, info *Info) error {
	var parsed struct {
		Results []struct {
			Name       string `json:"name"`
			Definition struct {
				Text string `json:"text"`
			} `json:"definition"`
			Children []struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Relation string `json:"relation"`
			} `json:"children"`
		} `json:"results"`
	}
	if err := m.getJSON(ctx, fmt.Sprintf("%s/ontology/go/terms/%s", m.baseURL, goID), &parsed); err != nil {
		return fmt.Errorf("error retrieving term %s: %w", goID, err)
	}
	if len(parsed.Results) == 0 {
		return fmt.Errorf("term %s not found", goID)
	}

	term := parsed.Results[0]
	info.Label = term.Name
	info.Definition = term.Definition.Text
	for _, child := range term.Children {
		info.RelatedTerms = append(info.RelatedTerms, RelatedTerm{
			ID:           child.ID,
			Label:        child.Name,
			Relationship: child.Relation,
		})
	}
	return nil
}

func (m *MetadataClient) fetchAnnotations(ctx context.Context, goID string, info *Info) error {
	q := url.Values{}
	q.Set("goId", goID)
	q.Set("taxonId", "9606")
	q.Set("limit", "50")
	q.Set("page", "1")

	var parsed struct {
		Results []struct {
			Symbol        string `json:"symbol"`
			GeneProductID string `json:"geneProductId"`
		} `json:"results"`
	}
	if err := m.getJSON(ctx, fmt.Sprintf("%s/annotation/search?%s", m.baseURL, q.Encode()), &parsed); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, anno := range parsed.Results {
		if anno.Symbol == "" || seen[anno.Symbol] {
			continue
		}
		seen[anno.Symbol] = true
		info.Genes = append(info.Genes, Gene{
			Symbol: anno.Symbol,
			ID:     strings.TrimPrefix(anno.GeneProductID, "UniProtKB:"),
		})
	}
	return nil
}

func (m *MetadataClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("term service error %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
