// Package engine ties the build, persistence, and search services together
// for one index location. Builds are exclusive and publish a new index only
// on success; searching runs read-only against the currently open index and
// supports any number of concurrent callers.
package engine

import (
	"fmt"
	"sync"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/index"
	"github.com/andrewlalis/airsearch/internal/builder"
	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/internal/metrics"
	"github.com/andrewlalis/airsearch/internal/persistence"
	"github.com/andrewlalis/airsearch/internal/searcher"
	"github.com/andrewlalis/airsearch/model"
	"github.com/andrewlalis/airsearch/services"
	"github.com/andrewlalis/airsearch/store"
)

// Config encapsulates the settings for an Engine.
type Config struct {
	// Schema declares the indexed and stored fields.
	Schema *config.Schema
	// IndexDir is the location of the persisted index. Always explicit,
	// never a process-wide default.
	IndexDir string
	// Logger to use. Defaults to the standard logrus logger.
	Logger *logrus.Entry
	// Clock for timing operations. Defaults to the wall clock.
	Clock clock.Clock
	// Metrics collectors. Optional; nil disables instrumentation.
	Metrics *metrics.Metrics
}

func (cfg *Config) validate() error {
	if cfg.Schema == nil {
		return fmt.Errorf("schema must be provided")
	}
	if err := cfg.Schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	if cfg.IndexDir == "" {
		return fmt.Errorf("index directory must be provided")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	return nil
}

// openIndex is one immutable, queryable index generation.
type openIndex struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	searcher      *searcher.Service
}

// Engine implements the services.IndexAccessor contract for one index
// location.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	builder *builder.Service
	current *openIndex
}

var _ services.IndexAccessor = (*Engine)(nil)

// New creates an Engine. If an index already exists at the configured
// location it is opened eagerly; a corrupt on-disk index is logged and left
// unopened so searches can surface the failure per call.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	buildService, err := builder.NewService(cfg.Schema, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create build service: %w", err)
	}

	eng := &Engine{cfg: cfg, builder: buildService}
	if persistence.Exists(cfg.IndexDir) {
		if err := eng.Open(); err != nil {
			cfg.Logger.WithField("index_dir", cfg.IndexDir).
				Warnf("failed to open existing index: %v", err)
		}
	}
	return eng, nil
}

// Exists reports whether a persisted index is present at the engine's
// location.
func (e *Engine) Exists() bool {
	return persistence.Exists(e.cfg.IndexDir)
}

// BuildIndex runs one exclusive build pass over records and atomically
// replaces any previously persisted index at the engine's location. On
// failure the previous index, if any, stays untouched and queryable.
func (e *Engine) BuildIndex(records []model.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.cfg.Clock.Now()
	invIndex, docs, err := e.builder.Build(records)
	if err != nil {
		e.observeBuild("error", 0, 0)
		return err
	}

	snap := &persistence.Snapshot{Schema: e.cfg.Schema, Index: invIndex, Docs: docs}
	if err := persistence.Save(e.cfg.IndexDir, snap); err != nil {
		e.observeBuild("error", 0, 0)
		return err
	}

	searchService, err := searcher.NewService(invIndex, docs, e.cfg.Schema, e.cfg.Clock)
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}
	e.current = &openIndex{
		invertedIndex: invIndex,
		documentStore: docs,
		searcher:      searchService,
	}

	elapsed := e.cfg.Clock.Now().Sub(start)
	e.observeBuild("ok", elapsed.Seconds(), docs.Len())
	e.cfg.Logger.WithFields(logrus.Fields{
		"index_dir": e.cfg.IndexDir,
		"documents": docs.Len(),
		"took":      elapsed,
	}).Info("index built and persisted")
	return nil
}

// Open loads the persisted index from the engine's location, replacing the
// in-memory generation. The snapshot's own schema drives searching, so an
// index built with an older schema stays queryable as written.
func (e *Engine) Open() error {
	snap, err := persistence.Open(e.cfg.IndexDir)
	if err != nil {
		return err
	}
	searchService, err := searcher.NewService(snap.Index, snap.Docs, snap.Schema, e.cfg.Clock)
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}

	e.mu.Lock()
	e.current = &openIndex{
		invertedIndex: snap.Index,
		documentStore: snap.Docs,
		searcher:      searchService,
	}
	e.mu.Unlock()

	e.cfg.Logger.WithFields(logrus.Fields{
		"index_dir": e.cfg.IndexDir,
		"documents": snap.Docs.Len(),
	}).Info("opened persisted index")
	return nil
}

// SearchTopK evaluates rawQuery against the open index and returns up to k
// ranked hits. A blank query or an absent index yields an empty result with
// a nil error; evaluation failures yield an empty result plus a
// SearchError.
func (e *Engine) SearchTopK(rawQuery string, k int) (services.SearchResult, error) {
	e.mu.RLock()
	current := e.current
	e.mu.RUnlock()

	if current == nil {
		if !e.Exists() {
			e.observeSearch("no_index", 0, 0)
			return services.SearchResult{Hits: []services.SearchHit{}}, nil
		}
		if err := e.Open(); err != nil {
			e.observeSearch("error", 0, 0)
			return services.SearchResult{Hits: []services.SearchHit{}},
				apperrors.NewSearchError("failed to open persisted index", err)
		}
		e.mu.RLock()
		current = e.current
		e.mu.RUnlock()
	}

	result, err := current.searcher.Search(rawQuery, k)
	switch {
	case err != nil:
		e.observeSearch("error", result.Took, len(result.Hits))
	case len(result.Hits) == 0:
		e.observeSearch("zero_result", result.Took, 0)
	default:
		e.observeSearch("hit", result.Took, len(result.Hits))
	}
	return result, err
}

func (e *Engine) observeBuild(status string, seconds float64, docs int) {
	if e.cfg.Metrics == nil {
		return
	}
	e.cfg.Metrics.BuildsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		e.cfg.Metrics.BuildDuration.Observe(seconds)
		e.cfg.Metrics.DocsIndexedTotal.Add(float64(docs))
	}
}

func (e *Engine) observeSearch(resultType string, tookMillis int64, hits int) {
	if e.cfg.Metrics == nil {
		return
	}
	e.cfg.Metrics.SearchesTotal.WithLabelValues(resultType).Inc()
	e.cfg.Metrics.SearchLatency.Observe(float64(tookMillis) / 1000)
	e.cfg.Metrics.SearchResultsCount.Observe(float64(hits))
}
