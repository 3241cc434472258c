package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

const defaultCacheTTL = 30 * time.Second

// HTTPProvider fetches rules and metrics from a remote rules service.
//
// Endpoints:
//
//	GET {base}/rules          → rulesDocument
//	GET {base}/metrics/{name} → MetricDefinition (404 when unknown)
//
// Rule snapshots are cached for a TTL. Concurrent refreshes of an expired
// cache are collapsed into a single upstream request.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	ttl     time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	cached  *Snapshot
	fetched time.Time

	group singleflight.Group
}

// rulesDocument is the wire format of the rules endpoint.
type rulesDocument struct {
	Version string             `json:"version"`
	Rules   []SubstitutionRule `json:"rules"`
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithCacheTTL overrides the snapshot cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.ttl = ttl }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = logger }
}

// NewHTTPProvider builds a provider for the rules service at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) (*HTTPProvider, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid rules service URL %q", baseURL)
	}

	p := &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		ttl:     defaultCacheTTL,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// FetchRules returns the cached snapshot when fresh, refreshing it from
// the service otherwise.
func (p *HTTPProvider) FetchRules(ctx context.Context) (*Snapshot, error) {
	p.mu.RLock()
	if p.cached != nil && time.Since(p.fetched) < p.ttl {
		snap := p.cached
		p.mu.RUnlock()
		return snap, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.group.Do("rules", func() (any, error) {
		return p.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (p *HTTPProvider) refresh(ctx context.Context) (*Snapshot, error) {
	// Another waiter may have refreshed while we queued.
	p.mu.RLock()
	if p.cached != nil && time.Since(p.fetched) < p.ttl {
		snap := p.cached
		p.mu.RUnlock()
		return snap, nil
	}
	p.mu.RUnlock()

	var doc rulesDocument
	if err := p.getJSON(ctx, p.baseURL+"/rules", &doc); err != nil {
		return nil, core.Wrap(core.ErrRuleFetch, err, "fetching rules")
	}

	for i, r := range doc.Rules {
		if err := r.Validate(); err != nil {
			return nil, core.Wrap(core.ErrRuleFetch, err, fmt.Sprintf("rule %d is malformed", i))
		}
	}

	version := doc.Version
	if version == "" {
		version = uuid.NewString()
	}

	snap := &Snapshot{Rules: doc.Rules, Version: version}

	p.mu.Lock()
	p.cached = snap
	p.fetched = time.Now()
	p.mu.Unlock()

	p.logger.Debug("rule snapshot refreshed",
		"version", snap.Version,
		"rules", len(snap.Rules))
	return snap, nil
}

// FetchMetric resolves a metric by name against the service.
func (p *HTTPProvider) FetchMetric(ctx context.Context, name string) (*MetricDefinition, error) {
	var metric MetricDefinition
	u := p.baseURL + "/metrics/" + url.PathEscape(name)

	err := p.getJSON(ctx, u, &metric)
	switch {
	case err == nil:
		return &metric, nil
	case isNotFound(err):
		return nil, metricNotFound(name)
	default:
		return nil, core.Wrap(core.ErrRuleFetch, err, "fetching metric "+name)
	}
}

// statusError carries a non-2xx response status.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.url, e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (p *HTTPProvider) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return &statusError{code: resp.StatusCode, url: u}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
