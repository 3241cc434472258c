package rules

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

func rulesServer(t *testing.T, doc rulesDocument, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rules", func(w http.ResponseWriter, _ *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})
	mux.HandleFunc("/metrics/revenue", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(MetricDefinition{
			Name:       "revenue",
			Expression: "SUM(amount * quantity)",
		}))
	})
	mux.HandleFunc("/metrics/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testDoc(t *testing.T) rulesDocument {
	t.Helper()
	rule, err := NewRule("raw.events", "curated.events_v2", 10)
	require.NoError(t, err)
	return rulesDocument{Version: "v42", Rules: []SubstitutionRule{rule}}
}

func TestHTTPProvider_FetchRules(t *testing.T) {
	srv := rulesServer(t, testDoc(t), nil)

	p, err := NewHTTPProvider(srv.URL)
	require.NoError(t, err)

	snap, err := p.FetchRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v42", snap.Version)
	require.Len(t, snap.Rules, 1)
	assert.Equal(t, "curated.events_v2", snap.Rules[0].Target.String())
}

func TestHTTPProvider_CachesSnapshot(t *testing.T) {
	var hits atomic.Int64
	srv := rulesServer(t, testDoc(t), &hits)

	p, err := NewHTTPProvider(srv.URL, WithCacheTTL(time.Hour))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := p.FetchRules(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), hits.Load())
}

func TestHTTPProvider_ZeroTTLAlwaysRefreshes(t *testing.T) {
	var hits atomic.Int64
	srv := rulesServer(t, testDoc(t), &hits)

	p, err := NewHTTPProvider(srv.URL, WithCacheTTL(0))
	require.NoError(t, err)

	_, err = p.FetchRules(context.Background())
	require.NoError(t, err)
	_, err = p.FetchRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestHTTPProvider_VersionFallback(t *testing.T) {
	doc := testDoc(t)
	doc.Version = ""
	srv := rulesServer(t, doc, nil)

	p, err := NewHTTPProvider(srv.URL)
	require.NoError(t, err)

	snap, err := p.FetchRules(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Version)
}

func TestHTTPProvider_MalformedRule(t *testing.T) {
	doc := rulesDocument{
		Version: "v1",
		Rules:   []SubstitutionRule{{Source: TableID{Name: "a"}}}, // no target
	}
	srv := rulesServer(t, doc, nil)

	p, err := NewHTTPProvider(srv.URL)
	require.NoError(t, err)

	_, err = p.FetchRules(context.Background())
	require.Error(t, err)
	assert.Equal(t, core.ErrRuleFetch, core.KindOf(err))
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(srv.URL)
	require.NoError(t, err)

	_, err = p.FetchRules(context.Background())
	require.Error(t, err)
	assert.Equal(t, core.ErrRuleFetch, core.KindOf(err))
}

func TestHTTPProvider_FetchMetric(t *testing.T) {
	srv := rulesServer(t, testDoc(t), nil)

	p, err := NewHTTPProvider(srv.URL)
	require.NoError(t, err)

	m, err := p.FetchMetric(context.Background(), "revenue")
	require.NoError(t, err)
	assert.Equal(t, "SUM(amount * quantity)", m.Expression)

	_, err = p.FetchMetric(context.Background(), "margin")
	require.Error(t, err)
	assert.Equal(t, core.ErrMetricNotFound, core.KindOf(err))
}

func TestNewHTTPProvider_InvalidURL(t *testing.T) {
	_, err := NewHTTPProvider("")
	assert.Error(t, err)
}
