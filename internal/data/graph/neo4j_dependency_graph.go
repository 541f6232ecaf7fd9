package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/twingraph-backend/internal/domain"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/platform/neo4jdb"
)

const (
	cypherMergeComponent = `MERGE (:Component {name: $name})`

	cypherMergeDependency = `
MERGE (a:Component {name: $source})
MERGE (b:Component {name: $target})
MERGE (a)-[:DEPENDS_ON]->(b)
`

	cypherListEdges = `
MATCH (a:Component)-[:DEPENDS_ON]->(b:Component)
RETURN a.name AS source, b.name AS target
`

	// Variable-length match: relationship uniqueness per path keeps cycles finite, and the
	// start node is returned only when a cycle leads back to it.
	cypherDownstream = `
MATCH (c:Component {name: $name})-[:DEPENDS_ON*]->(dependent:Component)
RETURN DISTINCT dependent.name AS name
`
)

var tracer = otel.Tracer("twingraph/data/graph")

type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) *Neo4jStore {
	return &Neo4jStore{client: client, log: log.With("store", "Neo4jDependencyGraph")}
}

func (s *Neo4jStore) MergeGraph(ctx context.Context, components []string, edges []domain.Edge) (err error) {
	ctx, span := startSpan(ctx, "neo4j.MergeGraph",
		attribute.Int("graph.components", len(components)),
		attribute.Int("graph.edges", len(edges)),
	)
	defer func() { endSpan(span, err) }()

	if len(components) == 0 && len(edges) == 0 {
		return nil
	}
	if err := s.ready(); err != nil {
		return err
	}

	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, name := range components {
			res, err := tx.Run(ctx, cypherMergeComponent, map[string]any{"name": name})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		for _, e := range edges {
			res, err := tx.Run(ctx, cypherMergeDependency, map[string]any{
				"source": e.Source,
				"target": e.Target,
			})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return classify("merge graph", err)
	}
	return nil
}

func (s *Neo4jStore) Edges(ctx context.Context) (out []domain.Edge, err error) {
	ctx, span := startSpan(ctx, "neo4j.Edges")
	defer func() { endSpan(span, err) }()

	if err := s.ready(); err != nil {
		return nil, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	v, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherListEdges, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		edges := make([]domain.Edge, 0, len(records))
		for _, rec := range records {
			source, err := stringField(rec, "source")
			if err != nil {
				return nil, err
			}
			target, err := stringField(rec, "target")
			if err != nil {
				return nil, err
			}
			edges = append(edges, domain.Edge{Source: source, Target: target})
		}
		return edges, nil
	})
	if err != nil {
		return nil, classify("list edges", err)
	}
	out, _ = v.([]domain.Edge)
	span.SetAttributes(attribute.Int("graph.edges", len(out)))
	return out, nil
}

func (s *Neo4jStore) Downstream(ctx context.Context, name string) (out []string, err error) {
	ctx, span := startSpan(ctx, "neo4j.Downstream", attribute.String("graph.component", name))
	defer func() { endSpan(span, err) }()

	if err := s.ready(); err != nil {
		return nil, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	v, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherDownstream, map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(records))
		for _, rec := range records {
			n, err := stringField(rec, "name")
			if err != nil {
				return nil, err
			}
			names = append(names, n)
		}
		return names, nil
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("downstream %q", name), err)
	}
	out, _ = v.([]string)
	span.SetAttributes(attribute.Int("graph.impacted", len(out)))
	return out, nil
}

func (s *Neo4jStore) Ping(ctx context.Context) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return false, classify("ping", err)
	}
	return ok, nil
}

func (s *Neo4jStore) ready() error {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return fmt.Errorf("neo4j store not initialized: %w", ErrStoreUnavailable)
	}
	return nil
}

// classify wraps err with the operation name and tags connectivity failures, including
// retries the driver gave up on, with ErrStoreUnavailable.
func classify(op string, err error) error {
	if isConnectivity(err) {
		return fmt.Errorf("neo4j %s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("neo4j %s: %w", op, err)
}

func isConnectivity(err error) bool {
	var ce *neo4j.ConnectivityError
	if errors.As(err, &ce) {
		return true
	}
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		for _, e := range limit.Errors {
			if errors.As(e, &ce) {
				return true
			}
		}
	}
	return false
}

func stringField(rec *neo4j.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("record missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("record field %q: want string, got %T", key, v)
	}
	return s, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(
		append([]attribute.KeyValue{attribute.String("db.system", "neo4j")}, attrs...)...,
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
