// Package engine owns the published network snapshot and wires the routing,
// geometry and statistics components to it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"raillog.org/engine/internal/appconf"
	"raillog.org/engine/internal/geocache"
	"raillog.org/engine/internal/geometry"
	"raillog.org/engine/internal/importer"
	"raillog.org/engine/internal/logging"
	"raillog.org/engine/internal/network"
	"raillog.org/engine/internal/projection"
	"raillog.org/engine/internal/routing"
	"raillog.org/engine/internal/stats"
)

// Snapshot is one published network together with the indexes derived from
// it. It is never modified after publication.
type Snapshot struct {
	Graph   *network.Graph
	Strict  *network.TransferIndex
	Relaxed *network.TransferIndex
	Finder  *routing.Finder
	Built   time.Time
	Version uint64
}

// Engine serves queries against the current snapshot. Readers never block:
// merges build a new snapshot under a mutex and swap it in atomically.
type Engine struct {
	cfg      appconf.EngineConfig
	logger   *slog.Logger
	cache    geocache.Cache
	resolver *geometry.Resolver
	stats    *stats.Calculator

	mu      sync.Mutex
	version uint64
	current atomic.Pointer[Snapshot]

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// New creates an engine over an empty network. cache may be nil.
func New(cfg appconf.EngineConfig, cache geocache.Cache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	resolver := geometry.NewResolver(cache, cfg.Geometry.Slicer(), logger)
	e := &Engine{
		cfg:          cfg,
		logger:       logger,
		cache:        cache,
		resolver:     resolver,
		stats:        stats.NewCalculator(resolver, logger),
		shutdownChan: make(chan struct{}),
	}
	e.current.Store(e.build(network.Empty()))
	return e
}

// Open opens the configured geometry cache, loads the configured data files
// and starts the periodic refresh when one is configured.
func Open(ctx context.Context, cfg appconf.EngineConfig, logger *slog.Logger) (*Engine, error) {
	store, err := geocache.Open(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("opening geometry cache: %w", err)
	}

	e := New(cfg, store, logger)
	if _, err := e.LoadFiles(ctx, cfg.Data); err != nil {
		e.Shutdown()
		return nil, err
	}

	if cfg.Data.RefreshInterval > 0 && len(cfg.Data.Files) > 0 {
		e.wg.Add(1)
		go e.refreshPeriodically(cfg.Data.RefreshInterval)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() appconf.EngineConfig {
	return e.cfg
}

// Snapshot returns the currently published snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// build derives the transfer indexes and finder for g. Callers hold mu,
// except New which runs before the engine is shared.
func (e *Engine) build(g *network.Graph) *Snapshot {
	strict := network.NewTransferIndex(g, e.cfg.Transfers.Options(true))
	relaxed := network.NewTransferIndex(g, e.cfg.Transfers.Options(false))
	return &Snapshot{
		Graph:   g,
		Strict:  strict,
		Relaxed: relaxed,
		Finder:  routing.NewFinder(strict, relaxed, e.cfg.Routing.Options(), e.logger),
		Built:   time.Now(),
		Version: e.version,
	}
}

func (e *Engine) publish(g *network.Graph) *Snapshot {
	e.version++
	snap := e.build(g)
	e.current.Store(snap)
	logging.LogOperation(e.logger, "network_snapshot_published",
		slog.Uint64("version", snap.Version),
		slog.Int("lines", g.LineCount()),
		slog.Int("stations", g.StationCount()),
		slog.Int("features", len(g.Features())))
	return snap
}

// Merge folds an operator table and import batches into the current network
// and publishes the result. Either argument may be empty. Geometry already
// cached for existing segments is kept.
func (e *Engine) Merge(ctx context.Context, companies map[string]network.CompanyInfo, batches ...importer.Batch) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mergeLocked(ctx, e.current.Load().Graph, companies, batches)
}

func (e *Engine) mergeLocked(ctx context.Context, base *network.Graph, companies map[string]network.CompanyInfo, batches []importer.Batch) (*Snapshot, error) {
	b := network.NewBuilder(base)
	if len(companies) > 0 {
		b.MergeCompanies(companies)
	}
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		company := batch.Company
		if company == "" {
			company = e.cfg.Data.DefaultCompany
		}
		b.AddRecords(batch.Records, company)
	}
	return e.publish(b.Build()), nil
}

// LoadFiles reads the operator table and data files of data and merges them
// into the current network.
func (e *Engine) LoadFiles(ctx context.Context, data appconf.DataConfig) (*Snapshot, error) {
	companies, batches, err := e.readData(ctx, data)
	if err != nil {
		return nil, err
	}
	return e.Merge(ctx, companies, batches...)
}

// Reload rebuilds the network from the configured data files alone,
// discarding anything merged since. The geometry cache is cleared once the
// new network is published, since reloaded files may carry different track.
func (e *Engine) Reload(ctx context.Context) (*Snapshot, error) {
	companies, batches, err := e.readData(ctx, e.cfg.Data)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, err := e.mergeLocked(ctx, network.Empty(), companies, batches)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Clear(ctx); err != nil {
			return snap, fmt.Errorf("clearing geometry cache: %w", err)
		}
		logging.LogOperation(e.logger, "geometry_cache_cleared",
			slog.String("component", "engine"),
			slog.Uint64("version", snap.Version))
	}
	return snap, nil
}

func (e *Engine) readData(ctx context.Context, data appconf.DataConfig) (map[string]network.CompanyInfo, []importer.Batch, error) {
	var (
		companies map[string]network.CompanyInfo
		index     network.CompanyIndex
	)
	if data.Companies != "" {
		table, err := importer.LoadCompanies(data.Companies)
		if err != nil {
			return nil, nil, err
		}
		companies, index = table, network.NewCompanyIndex(table)
	}

	batches := make([]importer.Batch, 0, len(data.Files))
	for _, path := range data.Files {
		batch, err := importer.LoadFile(ctx, path, index, e.logger)
		if err != nil {
			return nil, nil, err
		}
		batches = append(batches, batch)
	}
	return companies, batches, nil
}

func (e *Engine) refreshPeriodically(interval time.Duration) {
	defer e.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if _, err := e.Reload(ctx); err != nil {
				logging.LogError(e.logger, "network refresh failed", err,
					slog.String("component", "engine"))
			}
			cancel()
		case <-e.shutdownChan:
			return
		}
	}
}

// Shutdown stops the refresh loop and closes the geometry cache when it
// holds resources. It is safe to call more than once.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		close(e.shutdownChan)
		e.wg.Wait()
		if closer, ok := e.cache.(io.Closer); ok {
			logging.SafeCloseWithLogging(closer, e.logger, "geometry cache")
		}
	})
}

// Route finds an itinerary between two stations. An empty profile uses the
// configured default.
func (e *Engine) Route(ctx context.Context, from, to routing.Endpoint, profile string) (routing.Result, error) {
	return e.RouteOn(ctx, e.Snapshot(), from, to, profile)
}

// RouteOn is Route against a snapshot the caller already holds, so the result
// can be described with the same graph.
func (e *Engine) RouteOn(ctx context.Context, snap *Snapshot, from, to routing.Endpoint, profile string) (routing.Result, error) {
	p := e.cfg.Routing.Profile
	if profile != "" {
		parsed, err := routing.ParseProfile(profile)
		if err != nil {
			return routing.Result{}, fmt.Errorf("%w: %v", routing.ErrInvalidQuery, err)
		}
		p = parsed
	}
	return snap.Finder.Find(ctx, routing.Query{From: from, To: to, Profile: p})
}

// Geometry resolves the track ridden along seg.
func (e *Engine) Geometry(ctx context.Context, seg network.Segment) (geocache.Geometry, error) {
	if seg.FromID == seg.ToID {
		return geocache.Geometry{}, fmt.Errorf("%w: segment starts and ends at %q", geometry.ErrUnknownSegment, seg.FromID)
	}
	return e.resolver.Resolve(ctx, e.Snapshot().Graph, seg)
}

// Snap moves a coordinate onto the nearest line of the network.
func (e *Engine) Snap(lat, lng float64) network.SnapResult {
	return e.Snapshot().Graph.Snap(lat, lng, e.cfg.Geometry.SnapThreshold)
}

// Thumbnail projects the geometry of segs into a compact drawing.
func (e *Engine) Thumbnail(ctx context.Context, segs []network.Segment) (projection.Projection, error) {
	return e.stats.Thumbnail(ctx, e.Snapshot().Graph, segs)
}

// Stats summarises a trip log against the current network.
func (e *Engine) Stats(ctx context.Context, trips []stats.Trip) (stats.Summary, error) {
	return e.stats.Summarize(ctx, e.Snapshot().Graph, trips)
}

// Catalogue groups the lines of the current network for pickers.
func (e *Engine) Catalogue() []network.CatalogueCategory {
	return e.Snapshot().Graph.Catalogue()
}

// Line returns one line of the current network.
func (e *Engine) Line(key string) (*network.Line, bool) {
	return e.Snapshot().Graph.Line(key)
}

// IsNotFound reports whether err means the request named something the
// network does not contain.
func IsNotFound(err error) bool {
	return errors.Is(err, geometry.ErrUnknownSegment) || errors.Is(err, routing.ErrInvalidQuery)
}
