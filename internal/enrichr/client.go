// Package enrichr runs pathway enrichment through the Enrichr two-step
// protocol: register a gene list, then request enrichment against a fixed
// reference library.
package enrichr

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
)

// Term is one enrichment result row.
type Term struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	PValue        float64  `json:"p_value"`
	OddsRatio     float64  `json:"odds_ratio"`
	CombinedScore float64  `json:"combined_score"`
	Genes         []string `json:"genes"`
	AdjustedP     float64  `json:"adjusted_p_value"`
}

// Client submits gene lists for enrichment analysis.
type Client struct {
	baseURL    string
	library    string
	httpClient *http.Client
	cache      *cache.Store
	maxRetries int
	retryDelay time.Duration
}

func NewClient(baseURL, library string, timeout time.Duration, maxRetries int, retryDelay time.Duration, store *cache.Store) *Client {
	return &Client{
		baseURL:    baseURL,
		library:    library,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Enrich registers the gene list and returns significant terms as a
// pathway→p-value mapping. A persistent service failure is returned as an
// error; an empty mapping means the call succeeded with zero significant
// pathways.
func (c *Client) Enrich(ctx context.Context, genes []string, pThreshold float64, minOverlap int) (map[string]float64, error) {
	terms, err := c.SignificantTerms(ctx, genes, pThreshold, minOverlap)
	if err != nil {
		return nil, err
	}

	pathways := make(map[string]float64, len(terms))
	for _, t := range terms {
		pathways[t.Name] = t.PValue
	}
	return pathways, nil
}

// SignificantTerms returns terms passing both thresholds, ascending by
// p-value.
func (c *Client) SignificantTerms(ctx context.Context, genes []string, pThreshold float64, minOverlap int) ([]Term, error) {
	listID, err := c.addList(ctx, genes)
	if err != nil {
		return nil, fmt.Errorf("error submitting gene list: %w", err)
	}

	terms, err := c.enrich(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrichment results: %w", err)
	}

	var significant []Term
	for _, t := range terms {
		if t.PValue < pThreshold && len(t.Genes) >= minOverlap {
			significant = append(significant, t)
		}
	}
	sort.Slice(significant, func(i, j int) bool {
		return significant[i].PValue < significant[j].PValue
	})
	return significant, nil
}

// addList registers the genes and returns the opaque list id. The cache key
// hashes the sorted list so submission order does not fragment the cache.
func (c *Client) addList(ctx context.Context, genes []string) (int64, error) {
	sorted := append([]string(nil), genes...)
	sort.Strings(sorted)
	digest := md5.Sum([]byte(strings.Join(sorted, "\n")))
	key := fmt.Sprintf("enrichr_add_list_%x", digest)

	return cache.Fetch(c.cache, key, func() (int64, error) {
		var listID int64
		err := c.withRetries(ctx, "addList", func() error {
			var err error
			listID, err = c.postList(ctx, genes)
			return err
		})
		return listID, err
	})
}

func (c *Client) postList(ctx context.Context, genes []string) (int64, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("list", strings.Join(genes, "\n")); err != nil {
		return 0, err
	}
	if err := w.WriteField("description", "Disease analysis"); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/addList", &body)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return 0, fmt.Errorf("enrichment service error %s: %s", resp.Status, payload)
	}

	var parsed struct {
		UserListID int64 `json:"userListId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("invalid addList response: %w", err)
	}
	if parsed.UserListID == 0 {
		return 0, fmt.Errorf("no userListId in response")
	}
	return parsed.UserListID, nil
}

func (c *Client) enrich(ctx context.Context, listID int64) ([]Term, error) {
	key := fmt.Sprintf("enrichr_enrich_%d_%s", listID, c.library)

	return cache.Fetch(c.cache, key, func() ([]Term, error) {
		var terms []Term
		err := c.withRetries(ctx, "enrich", func() error {
			var err error
			terms, err = c.getEnrichment(ctx, listID)
			return err
		})
		return terms, err
	})
}

func (c *Client) getEnrichment(ctx context.Context, listID int64) ([]Term, error) {
	url := fmt.Sprintf("%s/enrich?userListId=%d&backgroundType=%s", c.baseURL, listID, c.library)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("enrichment service error %s: %s", resp.Status, payload)
	}

	// Rows are heterogeneous arrays:
	// [rank, term, p-value, odds ratio, combined score, genes, adjusted p, ...]
	var parsed map[string][][]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("invalid enrichment response: %w", err)
	}

	rows := parsed[c.library]
	terms := make([]Term, 0, len(rows))
	for _, row := range rows {
		t, ok := parseRow(row)
		if !ok {
			log.WithField("library", c.library).Warn("skipping malformed enrichment row")
			continue
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func parseRow(row []any) (Term, bool) {
	if len(row) < 7 {
		return Term{}, false
	}
	rank, ok := asFloat(row[0])
	if !ok {
		return Term{}, false
	}
	name, ok := row[1].(string)
	if !ok {
		return Term{}, false
	}
	pval, ok := asFloat(row[2])
	if !ok {
		return Term{}, false
	}
	odds, _ := asFloat(row[3])
	combined, _ := asFloat(row[4])
	adjusted, _ := asFloat(row[6])

	var genes []string
	switch v := row[5].(type) {
	case []any:
		for _, g := range v {
			if s, ok := g.(string); ok {
				genes = append(genes, s)
			}
		}
	case string:
		genes = []string{v}
	}

	return Term{
		Rank:          int(rank),
		Name:          name,
		PValue:        pval,
		OddsRatio:     odds,
		CombinedScore: combined,
		Genes:         genes,
		AdjustedP:     adjusted,
	}, true
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func (c *Client) withRetries(ctx context.Context, step string, call func() error) error {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		if err := call(); err != nil {
			lastErr = err
			log.WithError(err).WithFields(log.Fields{"step": step, "attempt": attempt + 1}).Debug("enrichment call failed")
			continue
		}
		return nil
	}
	return fmt.Errorf("%s failed after %d attempts: %w", step, attempts, lastErr)
}
