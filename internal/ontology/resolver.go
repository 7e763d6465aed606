// Package ontology resolves free-text disease names to EFO identifiers via
// the EBI Ontology Lookup Service.
package ontology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
)

// ErrNotFound means the search returned no candidate governed by the
// expected ontology. It is a normal outcome, not a transport failure.
var ErrNotFound = errors.New("disease not found in ontology")

const targetOntology = "efo"

type searchResponse struct {
	Response struct {
		Docs []candidateDoc `json:"docs"`
	} `json:"response"`
}

type candidateDoc struct {
	OntologyName string `json:"ontology_name"`
	ShortForm    string `json:"short_form"`
	Label        string `json:"label"`
}

// Resolver maps disease names to canonical EFO ids, memoizing per query
// string on top of the persistent lookup cache.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Store

	mu   sync.Mutex
	memo map[string]string // name -> efo id, "" for not-found
}

func NewResolver(baseURL string, timeout time.Duration, store *cache.Store) *Resolver {
	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		memo:       map[string]string{},
	}
}

// Resolve returns the EFO short-form id for the first search candidate whose
// governing ontology is EFO, in server rank order. ErrNotFound is returned
// when no candidate matches.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	if id, ok := r.memo[name]; ok {
		r.mu.Unlock()
		if id == "" {
			return "", ErrNotFound
		}
		return id, nil
	}
	r.mu.Unlock()

	key := fmt.Sprintf("ols_search_%s", name)
	docs, err := cache.Fetch(r.cache, key, func() ([]candidateDoc, error) {
		return r.search(ctx, name)
	})
	if err != nil {
		return "", err
	}

	id := ""
	for _, doc := range docs {
		if doc.OntologyName == targetOntology && doc.ShortForm != "" {
			id = doc.ShortForm
			break
		}
	}

	r.mu.Lock()
	r.memo[name] = id
	r.mu.Unlock()

	if id == "" {
		log.WithField("disease", name).Info("no EFO candidate for disease name")
		return "", ErrNotFound
	}
	return id, nil
}

func (r *Resolver) search(ctx context.Context, name string) ([]candidateDoc, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("ontology", targetOntology)
	searchURL := fmt.Sprintf("%s/search?%s", r.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ontology search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("ontology search error %s: %s", resp.Status, body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ontology search response: %w", err)
	}
	return parsed.Response.Docs, nil
}
