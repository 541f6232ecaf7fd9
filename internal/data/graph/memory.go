package graph

import (
	"context"
	"sync"

	"github.com/yungbote/twingraph-backend/internal/domain"
)

// MemoryStore is an in-process Store for local development and tests. Reachability matches the
// Cypher variable-length pattern used by Neo4jStore.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]struct{}
	out   map[string][]string
	edges []domain.Edge
	seen  map[domain.Edge]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: map[string]struct{}{},
		out:   map[string][]string{},
		seen:  map[domain.Edge]struct{}{},
	}
}

func (m *MemoryStore) MergeGraph(ctx context.Context, components []string, edges []domain.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range components {
		m.nodes[name] = struct{}{}
	}
	for _, e := range edges {
		m.nodes[e.Source] = struct{}{}
		m.nodes[e.Target] = struct{}{}
		if _, dup := m.seen[e]; dup {
			continue
		}
		m.seen[e] = struct{}{}
		m.edges = append(m.edges, e)
		m.out[e.Source] = append(m.out[e.Source], e.Target)
	}
	return nil
}

func (m *MemoryStore) Edges(ctx context.Context) ([]domain.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

func (m *MemoryStore) Downstream(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	visited := map[string]struct{}{}
	var order []string
	queue := append([]string(nil), m.out[name]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := visited[next]; ok {
			continue
		}
		visited[next] = struct{}{}
		order = append(order, next)
		queue = append(queue, m.out[next]...)
	}
	return order, nil
}

func (m *MemoryStore) Ping(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Components returns every known component name. Test helper for asserting node sets.
func (m *MemoryStore) Components() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.nodes))
	for n := range m.nodes {
		out = append(out, n)
	}
	return out
}
