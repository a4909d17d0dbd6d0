// Package dashboard wires the filter state store, the per-view fetchers, and
// the three view adapters into one engine, and serves the result over HTTP.
// The engine is the only place that knows about all views at once; the views
// themselves never talk to each other.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sthimark/quakeboard/internal/filterstate"
	"github.com/sthimark/quakeboard/internal/geo"
	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/source"
	"github.com/sthimark/quakeboard/internal/taxonomy"
	"github.com/sthimark/quakeboard/internal/view"
)

// Config carries everything the engine needs to assemble itself.
type Config struct {
	SearchHost   string
	QdrantHost   string
	Collection   string
	CSVPath      string
	TaxonomyPath string
	GeoJSONPath  string
	Logger       *slog.Logger
}

// Engine owns the filter state and the three views.
type Engine struct {
	Tax     *taxonomy.Taxonomy
	Store   *filterstate.Store
	Map     *view.MapView
	Stacked *view.StackedView
	Pack    *view.PackView
	Regions []geo.Region

	logger *slog.Logger
}

// NewEngine loads the taxonomy and region metadata, builds one fetcher per
// view with that view's search limit, and attaches the views to the store's
// fan-out.
func NewEngine(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}

	// A broken region file degrades the map to counts-only; it is logged,
	// not fatal, matching how the page renders nothing for that layer.
	regions, err := geo.LoadRegions(cfg.GeoJSONPath)
	if err != nil {
		logger.Error("loading regions failed, map metadata unavailable", "err", err)
		regions = nil
	}

	search := &source.SearchClient{Host: cfg.SearchHost}
	scroll := &source.ScrollClient{Host: cfg.QdrantHost, Collection: cfg.Collection}
	csv := &source.CSVSource{Path: cfg.CSVPath}

	store := filterstate.New(tax, logger)

	mapView := view.NewMapView(&source.Fetcher{
		Search:      search,
		Scroll:      scroll,
		CSV:         csv,
		SearchLimit: source.MapSearchLimit,
		Logger:      logger,
	}, store)
	stackedView := view.NewStackedView(&source.Fetcher{
		Search:      search,
		Scroll:      scroll,
		CSV:         csv,
		SearchLimit: source.ChartSearchLimit,
		Logger:      logger,
	}, store)
	packView := view.NewPackView(csv, tax, store)

	store.AttachViews(mapView, stackedView, packView)

	return &Engine{
		Tax:     tax,
		Store:   store,
		Map:     mapView,
		Stacked: stackedView,
		Pack:    packView,
		Regions: regions,
		logger:  logger,
	}, nil
}

// Prime performs the initial unfiltered load, the equivalent of the page's
// first render before any filter interaction. View failures are logged and
// tolerated; the dashboard starts empty rather than not at all.
func (e *Engine) Prime(ctx context.Context) {
	_, window := e.Store.State()
	change := filterstate.Change{
		Kind:       filterstate.ChangeUpdate,
		Selection:  nil, // unfiltered
		Window:     window,
		Generation: e.Store.Generation(),
	}
	for _, v := range []filterstate.View{e.Map, e.Stacked, e.Pack} {
		if err := v.Update(ctx, change); err != nil {
			e.logger.Error("initial view load failed", "view", v.Name(), "err", err)
		}
	}
}

// ScopeRegion narrows the stacked chart to one region (empty clears the
// scope) and re-renders just that chart with the current filter state, the
// behavior behind clicking a map polygon.
func (e *Engine) ScopeRegion(ctx context.Context, name string) error {
	if name != "" && !geo.Known(name) {
		return fmt.Errorf("unknown region %q", name)
	}
	e.Stacked.SetRegion(name)

	sel, window := e.Store.State()
	change := filterstate.Change{
		Kind:       filterstate.ChangeUpdate,
		Selection:  sel,
		Window:     window,
		Generation: e.Store.Generation(),
	}
	return e.Stacked.Update(ctx, change)
}

// VectorSearch submits a search term through the store. A blank term is
// rejected before any notification.
func (e *Engine) VectorSearch(term string) error {
	return e.Store.SubmitVectorSearch(term)
}

// State returns the current selection and window.
func (e *Engine) State() (model.Selection, model.TimeWindow) {
	return e.Store.State()
}
