// Package opentargets fetches disease-target associations from the Open
// Targets Platform GraphQL API.
package opentargets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agenthands/hallmarks/internal/cache"
)

const pageSize = 100

const associationsQuery = `
query diseaseAssociations($efoId: String!, $index: Int!, $size: Int!) {
  disease(efoId: $efoId) {
    associatedTargets(page: { index: $index, size: $size }) {
      count
      rows {
        target {
          approvedSymbol
        }
        score
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type associationsResponse struct {
	Data struct {
		Disease *struct {
			AssociatedTargets struct {
				Count int `json:"count"`
				Rows  []struct {
					Target struct {
						ApprovedSymbol string `json:"approvedSymbol"`
					} `json:"target"`
					Score float64 `json:"score"`
				} `json:"rows"`
			} `json:"associatedTargets"`
		} `json:"disease"`
	} `json:"data"`
}

// Client retrieves ranked target genes for a disease.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Store
	maxRetries int
	retryDelay time.Duration
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelay time.Duration, store *cache.Store) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      store,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// FetchTargets returns up to maxTargets gene symbols associated with the
// disease, in the service's descending-score order, keeping only rows at or
// above scoreThreshold. The cache key deliberately excludes maxTargets: the
// full fetched set is cached once and truncated at read time. An empty
// result is a valid outcome, distinct from a fetch error.
func (c *Client) FetchTargets(ctx context.Context, efoID string, maxTargets int, scoreThreshold float64) ([]string, error) {
	key := fmt.Sprintf("ot_disease_targets_%s_score%g", efoID, scoreThreshold)

	targets, err := cache.Fetch(c.cache, key, func() ([]string, error) {
		return c.fetchAllPages(ctx, efoID, maxTargets, scoreThreshold)
	})
	if err != nil {
		return nil, err
	}

	if len(targets) > maxTargets {
		targets = targets[:maxTargets]
	}
	return targets, nil
}

func (c *Client) fetchAllPages(ctx context.Context, efoID string, maxTargets int, scoreThreshold float64) ([]string, error) {
	var targets []string

	for page := 0; len(targets) < maxTargets; page++ {
		rows, total, err := c.fetchPage(ctx, efoID, page)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			// Unknown disease id: the service returns a null disease node.
			break
		}

		for _, row := range rows {
			if row.Score >= scoreThreshold {
				targets = append(targets, row.Symbol)
			}
		}

		seen := (page + 1) * pageSize
		if len(rows) < pageSize || seen >= total {
			break
		}
	}

	log.WithFields(log.Fields{"efo_id": efoID, "targets": len(targets)}).Debug("fetched disease targets")
	return targets, nil
}

type associationRow struct {
	Symbol string
	Score  float64
}

func (c *Client) fetchPage(ctx context.Context, efoID string, page int) ([]associationRow, int, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: associationsQuery,
		Variables: map[string]any{
			"efoId": efoID,
			"index": page,
			"size":  pageSize,
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal associations query: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		rows, total, err := c.postPage(ctx, body)
		if err == nil {
			return rows, total, nil
		}
		lastErr = err
		log.WithError(err).WithField("page", page).Debug("association page fetch failed, retrying")
	}
	return nil, 0, fmt.Errorf("error fetching associations for %s after %d attempts: %w", efoID, c.maxRetries, lastErr)
}

func (c *Client) postPage(ctx context.Context, body []byte) ([]associationRow, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, 0, fmt.Errorf("association service error %s: %s", resp.Status, payload)
	}

	var parsed associationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode associations response: %w", err)
	}

	if parsed.Data.Disease == nil {
		return nil, 0, nil
	}

	at := parsed.Data.Disease.AssociatedTargets
	rows := make([]associationRow, 0, len(at.Rows))
	for _, r := range at.Rows {
		rows = append(rows, associationRow{Symbol: r.Target.ApprovedSymbol, Score: r.Score})
	}
	return rows, at.Count, nil
}
