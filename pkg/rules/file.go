package rules

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

// FileProvider serves rules and metrics from a YAML document on disk.
//
// Document shape:
//
//	version: "2026-08-01"
//	rules:
//	  - source: {schema: raw, name: events}
//	    target: {schema: curated, name: events_v2}
//	    priority: 10
//	    enabled: true
//	metrics:
//	  - name: revenue
//	    expression: SUM(amount_usd)
//
// Watch starts an fsnotify watcher that reloads the document on change,
// so long-lived processes pick up edits without a restart.
type FileProvider struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	snap    *Snapshot
	metrics map[string]MetricDefinition
}

type rulesFile struct {
	Version string             `yaml:"version"`
	Rules   []SubstitutionRule `yaml:"rules"`
	Metrics []MetricDefinition `yaml:"metrics"`
}

// NewFileProvider loads the document at path.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &FileProvider{path: path, logger: logger}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FileProvider) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return core.Wrap(core.ErrRuleFetch, err, "reading rules file")
	}

	var doc rulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.Wrap(core.ErrRuleFetch, err, "parsing rules file")
	}

	for i, r := range doc.Rules {
		if err := r.Validate(); err != nil {
			return core.Wrap(core.ErrRuleFetch, err, fmt.Sprintf("rule %d in %s is malformed", i, p.path))
		}
	}

	byName := make(map[string]MetricDefinition, len(doc.Metrics))
	for _, m := range doc.Metrics {
		if m.Name == "" || m.Expression == "" {
			return core.Errorf(core.ErrRuleFetch, "metric in %s missing name or expression", p.path)
		}
		byName[m.Name] = m
	}

	version := doc.Version
	if version == "" {
		version = fileVersion(p.path)
	}

	p.mu.Lock()
	p.snap = &Snapshot{Rules: doc.Rules, Version: version}
	p.metrics = byName
	p.mu.Unlock()

	p.logger.Debug("rules file loaded",
		"path", p.path,
		"version", version,
		"rules", len(doc.Rules),
		"metrics", len(doc.Metrics))
	return nil
}

// fileVersion derives a version tag from the file's modification time.
func fileVersion(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}
	return info.ModTime().UTC().Format("20060102T150405Z")
}

// Watch reloads the document whenever it changes on disk, until ctx is
// cancelled. A reload that fails keeps the last good snapshot.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(p.path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := p.load(); err != nil {
					p.logger.Warn("rules file reload failed", "path", p.path, "error", err)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Warn("rules file watcher error", "path", p.path, "error", err)
			}
		}
	}()

	return nil
}

// FetchRules returns the current snapshot.
func (p *FileProvider) FetchRules(_ context.Context) (*Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap, nil
}

// FetchMetric resolves a metric by name.
func (p *FileProvider) FetchMetric(_ context.Context, name string) (*MetricDefinition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, ok := p.metrics[name]
	if !ok {
		return nil, metricNotFound(name)
	}
	return &m, nil
}
