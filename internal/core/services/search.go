package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Ensure ArtifactSearchEngine implements the interface.
var _ driving.SearchService = (*ArtifactSearchEngine)(nil)

const (
	instrumentationName = "github.com/custodia-labs/artifact-search/internal/core/services"
	defaultHistoryLimit = 20

	// defaultRecordTimeout bounds history and event writes after a search.
	defaultRecordTimeout = 5 * time.Second
)

// outcome is the tagged result of one connector call.
type outcome struct {
	source    domain.AppSource
	artifacts []domain.Artifact
	err       error
}

// engineMetrics are the RED instruments for searches.
type engineMetrics struct {
	searches          metric.Int64Counter
	connectorFailures metric.Int64Counter
	duration          metric.Float64Histogram
}

// ArtifactSearchEngine routes queries, fans them out to configured
// connectors and merges the answers.
type ArtifactSearchEngine struct {
	connectors map[domain.AppSource]driven.Connector
	router     *Router
	summariser *Summariser

	history          driven.HistoryStore
	events           driven.EventPublisher
	connectorTimeout time.Duration
	recordTimeout    time.Duration

	now     func() time.Time
	tracer  trace.Tracer
	metrics engineMetrics

	closeOnce sync.Once
	closeErr  error
}

// NewArtifactSearchEngine creates an engine over the given connectors.
// Connectors that are not configured are dropped. router and summariser
// may be nil, in which case keyword routing and count summaries are used.
func NewArtifactSearchEngine(
	connectors []driven.Connector,
	router *Router,
	summariser *Summariser,
) *ArtifactSearchEngine {
	if router == nil {
		router = NewRouter(nil, nil)
	}
	if summariser == nil {
		summariser = NewSummariser(nil, nil)
	}

	e := &ArtifactSearchEngine{
		connectors:       make(map[domain.AppSource]driven.Connector, len(connectors)),
		router:           router,
		summariser:       summariser,
		connectorTimeout: domain.DefaultConnectorTimeout,
		recordTimeout:    defaultRecordTimeout,
		now:              time.Now,
		tracer:           otel.Tracer(instrumentationName),
	}
	e.metrics = newEngineMetrics(otel.Meter(instrumentationName))

	for _, c := range connectors {
		if c == nil {
			continue
		}
		src := c.Source()
		if !c.IsConfigured() {
			logger.Debug("Source %s not configured, skipping", src)
			continue
		}
		if _, dup := e.connectors[src]; dup {
			logger.Warn("Duplicate connector for %s, keeping the last one", src)
		}
		e.connectors[src] = c
		logger.Debug("Source %s configured", src)
	}

	return e
}

func newEngineMetrics(m metric.Meter) engineMetrics {
	var em engineMetrics
	var err error
	if em.searches, err = m.Int64Counter("artifactsearch.searches",
		metric.WithDescription("Completed searches")); err != nil {
		logger.Warn("Create searches counter: %v", err)
		em.searches = noop.Int64Counter{}
	}
	if em.connectorFailures, err = m.Int64Counter("artifactsearch.connector.failures",
		metric.WithDescription("Connector calls excluded from results")); err != nil {
		logger.Warn("Create failures counter: %v", err)
		em.connectorFailures = noop.Int64Counter{}
	}
	if em.duration, err = m.Float64Histogram("artifactsearch.search.duration",
		metric.WithDescription("End-to-end search latency"), metric.WithUnit("ms")); err != nil {
		logger.Warn("Create duration histogram: %v", err)
		em.duration = noop.Float64Histogram{}
	}
	return em
}

// SetHistoryStore enables the search audit trail.
func (e *ArtifactSearchEngine) SetHistoryStore(store driven.HistoryStore) {
	e.history = store
}

// SetEventPublisher enables search events.
func (e *ArtifactSearchEngine) SetEventPublisher(pub driven.EventPublisher) {
	e.events = pub
}

// SetConnectorTimeout bounds each connector call. Zero disables the bound.
func (e *ArtifactSearchEngine) SetConnectorTimeout(d time.Duration) {
	e.connectorTimeout = d
}

// SearchText searches with a raw query string.
func (e *ArtifactSearchEngine) SearchText(ctx context.Context, query string) (*domain.SearchResult, error) {
	return e.Search(ctx, domain.SearchQuery{Query: query})
}

// Search executes one federated search.
// Connector failures are isolated; only invalid input returns an error.
func (e *ArtifactSearchEngine) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	start := e.now()

	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "artifactsearch.search",
		trace.WithAttributes(attribute.Int("query.length", len(query.Query))))
	defer span.End()

	logger.Section("Artifact Search")
	logger.Debug("Query: %q", query.Query)

	routed := e.router.Route(ctx, query)
	span.SetAttributes(attribute.StringSlice("routed.sources", sourceStrings(routed.TargetApps)))

	dispatch := e.dispatchSet(routed)
	if len(dispatch) == 0 {
		logger.Info("No configured source matches %v", routed.TargetApps)
		result := &domain.SearchResult{
			Query:           query.Query,
			Artifacts:       []domain.Artifact{},
			SourcesSearched: []domain.AppSource{},
			Summary:         domain.SummaryNoSources,
		}
		e.finish(ctx, start, routed, result)
		return result, nil
	}

	logger.Debug("Dispatching to %d sources: %v", len(dispatch), dispatch)
	outcomes := e.fanOut(ctx, routed, dispatch)

	artifacts := []domain.Artifact{}
	searched := make([]domain.AppSource, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			logger.Warn("Search failed for %s: %v", o.source, o.err)
			e.metrics.connectorFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("source", string(o.source))))
			continue
		}
		logger.Debug("%s returned %d artifacts", o.source, len(o.artifacts))
		artifacts = append(artifacts, o.artifacts...)
		searched = append(searched, o.source)
	}

	RankArtifacts(artifacts)

	result := &domain.SearchResult{
		Query:           query.Query,
		Artifacts:       artifacts,
		SourcesSearched: searched,
		TotalResults:    len(artifacts),
		Summary:         e.summariser.Summarise(ctx, query.Query, artifacts),
	}
	e.finish(ctx, start, routed, result)

	logger.Info("Found %d artifacts from %d/%d sources in %.1fms",
		result.TotalResults, len(searched), len(dispatch), result.SearchDurationMS)
	return result, nil
}

// dispatchSet returns the configured sources targeted by the routed query,
// in routed order.
func (e *ArtifactSearchEngine) dispatchSet(routed domain.RoutedQuery) []domain.AppSource {
	var out []domain.AppSource
	for _, src := range routed.TargetApps {
		if _, ok := e.connectors[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// fanOut runs one search per source concurrently. Each goroutine owns one
// slot of the returned slice.
func (e *ArtifactSearchEngine) fanOut(
	ctx context.Context, routed domain.RoutedQuery, sources []domain.AppSource,
) []outcome {
	outcomes := make([]outcome, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src domain.AppSource) {
			defer wg.Done()
			outcomes[i] = e.searchSource(ctx, routed, src)
		}(i, src)
	}
	wg.Wait()

	return outcomes
}

// searchSource calls one connector under the connector deadline.
func (e *ArtifactSearchEngine) searchSource(
	ctx context.Context, routed domain.RoutedQuery, src domain.AppSource,
) outcome {
	ctx, span := e.tracer.Start(ctx, "artifactsearch.connector.search",
		trace.WithAttributes(attribute.String("source", string(src))))
	defer span.End()

	ctx, cancel := e.withConnectorTimeout(ctx)
	defer cancel()

	conn := e.connectors[src]
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{source: src, err: fmt.Errorf("connector panic: %v", r)}
			}
		}()
		artifacts, err := conn.Search(ctx, routed)
		done <- outcome{source: src, artifacts: artifacts, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{source: src, err: fmt.Errorf("search %s: %w", src, ctx.Err())}
	}

	if out.err != nil {
		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.err.Error())
	} else {
		span.SetAttributes(attribute.Int("artifacts", len(out.artifacts)))
	}
	return out
}

func (e *ArtifactSearchEngine) withConnectorTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.connectorTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.connectorTimeout)
}

// finish stamps the duration and records the search. Recording failures
// are logged and never change the result.
func (e *ArtifactSearchEngine) finish(
	ctx context.Context, start time.Time, routed domain.RoutedQuery, result *domain.SearchResult,
) {
	result.SearchDurationMS = domain.DurationMS(e.now().Sub(start))

	e.metrics.searches.Add(ctx, 1)
	e.metrics.duration.Record(ctx, result.SearchDurationMS)

	if e.history == nil && e.events == nil {
		return
	}

	record := domain.SearchRecord{
		ID:              uuid.New().String(),
		Query:           result.Query,
		TargetApps:      routed.TargetApps,
		SourcesSearched: result.SourcesSearched,
		TotalResults:    result.TotalResults,
		DurationMS:      result.SearchDurationMS,
		CreatedAt:       start.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, e.recordTimeout)
	defer cancel()

	if e.history != nil {
		if err := e.history.Save(ctx, record); err != nil {
			logger.Warn("Save search history: %v", err)
		}
	}
	if e.events != nil {
		if err := e.events.PublishSearch(ctx, record); err != nil {
			logger.Warn("Publish search event: %v", err)
		}
	}
}

// GetArtifact fetches one artifact. Unconfigured sources and connector
// failures both report domain.ErrNotFound.
func (e *ArtifactSearchEngine) GetArtifact(
	ctx context.Context, source domain.AppSource, id string,
) (*domain.Artifact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: artifact id must not be empty", domain.ErrInvalidInput)
	}

	conn, ok := e.connectors[source]
	if !ok {
		logger.Warn("Connector %s not available", source)
		return nil, fmt.Errorf("get %s/%s: %w", source, id, domain.ErrNotFound)
	}

	ctx, span := e.tracer.Start(ctx, "artifactsearch.get",
		trace.WithAttributes(attribute.String("source", string(source))))
	defer span.End()

	artifact, err := safeGet(ctx, conn, id)
	if err != nil || artifact == nil {
		if err != nil {
			logger.Debug("Get %s/%s: %v", source, id, err)
		}
		return nil, fmt.Errorf("get %s/%s: %w", source, id, domain.ErrNotFound)
	}
	return artifact, nil
}

func safeGet(ctx context.Context, conn driven.Connector, id string) (a *domain.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("connector panic: %v", r)
		}
	}()
	return conn.GetByID(ctx, id)
}

// TestConnections checks every configured connector concurrently.
// A failing or panicking check is recorded as false.
func (e *ArtifactSearchEngine) TestConnections(ctx context.Context) map[domain.AppSource]bool {
	results := make(map[domain.AppSource]bool, len(e.connectors))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for src, conn := range e.connectors {
		wg.Add(1)
		go func(src domain.AppSource, conn driven.Connector) {
			defer wg.Done()
			cctx, cancel := e.withConnectorTimeout(ctx)
			defer cancel()

			err := safeTest(cctx, conn)
			if err != nil {
				logger.Warn("Connection test failed for %s: %v", src, err)
			}

			mu.Lock()
			results[src] = err == nil
			mu.Unlock()
		}(src, conn)
	}
	wg.Wait()

	return results
}

func safeTest(ctx context.Context, conn driven.Connector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connector panic: %v", r)
		}
	}()
	return conn.TestConnection(ctx)
}

// ConfiguredSources lists configured sources in canonical order.
func (e *ArtifactSearchEngine) ConfiguredSources() []domain.AppSource {
	out := make([]domain.AppSource, 0, len(e.connectors))
	for _, src := range domain.AllSources() {
		if _, ok := e.connectors[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// RecentSearches returns the audit trail, newest first.
func (e *ArtifactSearchEngine) RecentSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if e.history == nil {
		return []domain.SearchRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := e.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return records, nil
}

// Close closes every configured connector, then the history store and
// event publisher. All are attempted even when some fail. Later calls
// return the first call's result.
func (e *ArtifactSearchEngine) Close() error {
	e.closeOnce.Do(func() {
		var errs []error
		for _, src := range e.ConfiguredSources() {
			if err := safeClose(e.connectors[src]); err != nil {
				logger.Error("Close %s: %v", src, err)
				errs = append(errs, fmt.Errorf("close %s: %w", src, err))
			}
		}
		if e.history != nil {
			if err := e.history.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close history: %w", err))
			}
		}
		if e.events != nil {
			if err := e.events.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close events: %w", err))
			}
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}

func safeClose(conn driven.Connector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connector panic: %v", r)
		}
	}()
	return conn.Close()
}

func sourceStrings(srcs []domain.AppSource) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = string(s)
	}
	return out
}
