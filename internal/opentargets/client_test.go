package opentargets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hallmarks/internal/cache"
)

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "lookups.db"), 3600)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type pageVars struct {
	EFOID string
	Index int
}

func decodeVars(t *testing.T, r *http.Request) pageVars {
	t.Helper()
	var req struct {
		Variables struct {
			EFOID string `json:"efoId"`
			Index int    `json:"index"`
		} `json:"variables"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return pageVars{EFOID: req.Variables.EFOID, Index: req.Variables.Index}
}

func writePage(w http.ResponseWriter, total int, rows []string, scores []float64) {
	type row struct {
		Target struct {
			ApprovedSymbol string `json:"approvedSymbol"`
		} `json:"target"`
		Score float64 `json:"score"`
	}
	out := make([]row, len(rows))
	for i := range rows {
		out[i].Target.ApprovedSymbol = rows[i]
		out[i].Score = scores[i]
	}
	json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"disease": map[string]any{
				"associatedTargets": map[string]any{"count": total, "rows": out},
			},
		},
	})
}

func TestFetchTargetsFiltersByThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := decodeVars(t, r)
		assert.Equal(t, "EFO_0000400", vars.EFOID)
		writePage(w, 3, []string{"TP53", "INS", "GCK"}, []float64{0.9, 0.19, 0.2})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 1, 0, testStore(t))

	targets, err := c.FetchTargets(context.Background(), "EFO_0000400", 25, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53", "GCK"}, targets)
}

func TestFetchTargetsPaginates(t *testing.T) {
	page0 := make([]string, pageSize)
	scores0 := make([]float64, pageSize)
	for i := range page0 {
		page0[i] = fmt.Sprintf("GENE%03d", i)
		scores0[i] = 0.5
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := decodeVars(t, r)
		switch vars.Index {
		case 0:
			writePage(w, pageSize+2, page0, scores0)
		case 1:
			writePage(w, pageSize+2, []string{"EXTRA1", "EXTRA2"}, []float64{0.5, 0.5})
		default:
			t.Errorf("unexpected page %d", vars.Index)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 1, 0, testStore(t))

	targets, err := c.FetchTargets(context.Background(), "EFO_0000400", 200, 0.2)
	require.NoError(t, err)
	assert.Len(t, targets, pageSize+2)
	assert.Equal(t, "EXTRA2", targets[pageSize+1])
}

func TestFetchTargetsUnknownDisease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"disease":null}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 1, 0, testStore(t))

	targets, err := c.FetchTargets(context.Background(), "EFO_BOGUS", 25, 0.2)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestFetchTargetsCacheSharedAcrossMaxTargets(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		decodeVars(t, r)
		writePage(w, 5,
			[]string{"A", "B", "C", "D", "E"},
			[]float64{0.9, 0.8, 0.7, 0.6, 0.5})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 1, 0, testStore(t))

	full, err := c.FetchTargets(context.Background(), "EFO_0000400", 10, 0.2)
	require.NoError(t, err)
	assert.Len(t, full, 5)

	// A smaller limit reuses the cached set and truncates at read time.
	short, err := c.FetchTargets(context.Background(), "EFO_0000400", 2, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, short)
	assert.Equal(t, 1, calls)
}

func TestFetchTargetsRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, 0, testStore(t))

	_, err := c.FetchTargets(context.Background(), "EFO_0000400", 25, 0.2)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestFetchTargetsRecoversAfterTransientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		decodeVars(t, r)
		writePage(w, 1, []string{"TP53"}, []float64{0.9})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, 0, testStore(t))

	targets, err := c.FetchTargets(context.Background(), "EFO_0000400", 25, 0.2)
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53"}, targets)
}
