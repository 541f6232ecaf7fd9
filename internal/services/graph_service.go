package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/twingraph-backend/internal/data/cache"
	"github.com/yungbote/twingraph-backend/internal/data/graph"
	"github.com/yungbote/twingraph-backend/internal/domain"
	"github.com/yungbote/twingraph-backend/internal/ingest"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/apierr"
	"github.com/yungbote/twingraph-backend/internal/platform/ctxutil"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

const (
	StoreOK  = "ok"
	StoreBad = "bad"
)

type IngestReport struct {
	LinesProcessed int
	EdgesApplied   int
	Skipped        int
}

type GraphService interface {
	// Seed merges the fixed API/Database/Frontend bootstrap graph.
	Seed(ctx context.Context) error
	// ApplyEdges merges every pair in order, duplicates included.
	ApplyEdges(ctx context.Context, edges []domain.Edge) error
	// Ingest parses text into edges and applies them. Malformed lines are skipped, not errors.
	Ingest(ctx context.Context, text string) (IngestReport, error)
	ListEdges(ctx context.Context) ([]domain.Edge, error)
	// Impact returns the distinct components reachable from component over outgoing edges.
	// Unknown components yield an empty slice.
	Impact(ctx context.Context, component string) ([]string, error)
	// StoreHealth reports StoreOK or StoreBad; it never returns an error.
	StoreHealth(ctx context.Context) string
}

type graphService struct {
	log          *logger.Logger
	store        graph.Store
	cache        cache.ImpactCache
	cacheEnabled bool
	metrics      *observability.Metrics
	tracer       trace.Tracer
}

func NewGraphService(log *logger.Logger, store graph.Store, impactCache cache.ImpactCache, metrics *observability.Metrics) GraphService {
	if impactCache == nil {
		impactCache = cache.Noop{}
	}
	_, noop := impactCache.(cache.Noop)
	return &graphService{
		log:          log.With("service", "GraphService"),
		store:        store,
		cache:        impactCache,
		cacheEnabled: !noop,
		metrics:      metrics,
		tracer:       otel.Tracer("twingraph/services"),
	}
}

func (s *graphService) Seed(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "GraphService.Seed")
	defer func() { finishSpan(span, err) }()

	if err := s.merge(ctx, domain.SeedComponents, domain.SeedEdges); err != nil {
		return err
	}
	s.logger(ctx).Info("graph seeded", "components", len(domain.SeedComponents), "edges", len(domain.SeedEdges))
	return nil
}

func (s *graphService) ApplyEdges(ctx context.Context, edges []domain.Edge) (err error) {
	ctx, span := s.tracer.Start(ctx, "GraphService.ApplyEdges", trace.WithAttributes(attribute.Int("graph.edges", len(edges))))
	defer func() { finishSpan(span, err) }()

	return s.merge(ctx, nil, edges)
}

func (s *graphService) Ingest(ctx context.Context, text string) (IngestReport, error) {
	ctx, span := s.tracer.Start(ctx, "GraphService.Ingest")
	defer span.End()

	parsed := ingest.Parse(text)
	report := IngestReport{
		LinesProcessed: parsed.LinesProcessed,
		EdgesApplied:   len(parsed.Edges),
		Skipped:        parsed.Skipped,
	}
	span.SetAttributes(
		attribute.Int("ingest.lines", report.LinesProcessed),
		attribute.Int("ingest.edges", report.EdgesApplied),
		attribute.Int("ingest.skipped", report.Skipped),
	)

	if err := s.ApplyEdges(ctx, parsed.Edges); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestReport{}, err
	}
	s.metrics.ObserveIngest(report.LinesProcessed, report.Skipped, report.EdgesApplied)
	s.logger(ctx).Info("ingested dependency text",
		"lines_processed", report.LinesProcessed,
		"edges_applied", report.EdgesApplied,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *graphService) ListEdges(ctx context.Context) (_ []domain.Edge, err error) {
	ctx, span := s.tracer.Start(ctx, "GraphService.ListEdges")
	defer func() { finishSpan(span, err) }()

	start := time.Now()
	edges, err := s.store.Edges(ctx)
	s.metrics.ObserveStore("edges", time.Since(start), err)
	if err != nil {
		s.logger(ctx).Error("list edges failed", "error", err)
		return nil, storeError(err)
	}
	if edges == nil {
		edges = []domain.Edge{}
	}
	return edges, nil
}

func (s *graphService) Impact(ctx context.Context, component string) (_ []string, err error) {
	ctx, span := s.tracer.Start(ctx, "GraphService.Impact", trace.WithAttributes(attribute.String("graph.component", component)))
	defer func() { finishSpan(span, err) }()

	var (
		gen      int64
		cacheErr error
	)
	if s.cacheEnabled {
		gen, cacheErr = s.cache.Generation(ctx)
		if cacheErr == nil {
			if names, hit, err := s.cache.Get(ctx, gen, component); err == nil && hit {
				s.metrics.ObserveImpactCache("hit")
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return names, nil
			} else if err != nil {
				cacheErr = err
			}
		}
		if cacheErr != nil {
			s.metrics.ObserveImpactCache("error")
			s.logger(ctx).Warn("impact cache unavailable (continuing)", "error", cacheErr)
		} else {
			s.metrics.ObserveImpactCache("miss")
		}
	}

	start := time.Now()
	reached, err := s.store.Downstream(ctx, component)
	s.metrics.ObserveStore("downstream", time.Since(start), err)
	if err != nil {
		s.logger(ctx).Error("impact query failed", "component", component, "error", err)
		return nil, storeError(err)
	}
	names := dedupe(reached)
	span.SetAttributes(attribute.Int("graph.impacted", len(names)))

	if s.cacheEnabled && cacheErr == nil {
		if err := s.cache.Set(ctx, gen, component, names); err != nil {
			s.logger(ctx).Warn("impact cache write failed (continuing)", "error", err)
		}
	}
	return names, nil
}

func (s *graphService) StoreHealth(ctx context.Context) string {
	ctx, span := s.tracer.Start(ctx, "GraphService.StoreHealth")
	defer span.End()

	start := time.Now()
	ok, err := s.store.Ping(ctx)
	s.metrics.ObserveStore("ping", time.Since(start), err)
	if err != nil {
		s.logger(ctx).Warn("store health check failed", "error", err)
		return StoreBad
	}
	if !ok {
		s.logger(ctx).Warn("store health check returned unexpected result")
		return StoreBad
	}
	return StoreOK
}

func (s *graphService) merge(ctx context.Context, components []string, edges []domain.Edge) error {
	start := time.Now()
	err := s.store.MergeGraph(ctx, components, edges)
	s.metrics.ObserveStore("merge_graph", time.Since(start), err)
	if err != nil {
		s.logger(ctx).Error("graph write failed", "components", len(components), "edges", len(edges), "error", err)
		return storeError(err)
	}
	if s.cacheEnabled && (len(components) > 0 || len(edges) > 0) {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger(ctx).Warn("impact cache invalidation failed; cached results may be stale until TTL", "error", err)
		}
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, graph.ErrStoreUnavailable) {
		return apierr.StoreUnavailable(err)
	}
	return apierr.StoreFailure(err)
}

func (s *graphService) logger(ctx context.Context) *logger.Logger {
	if fields := ctxutil.LogFields(ctx); len(fields) > 0 {
		return s.log.With(fields...)
	}
	return s.log
}

// dedupe keeps the first occurrence of each name. The result is never nil.
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
