package graph

import (
	"context"
	"errors"

	"github.com/yungbote/twingraph-backend/internal/domain"
)

// ErrStoreUnavailable marks failures where the store could not be reached at all, as opposed to
// a query the store rejected.
var ErrStoreUnavailable = errors.New("graph store unavailable")

// Store is the dependency graph persistence boundary. Every write has merge semantics:
// asserting an existing component or edge again changes nothing.
type Store interface {
	// MergeGraph upserts the named components and then each edge (both endpoints plus the
	// DEPENDS_ON relationship) in order, in a single write unit.
	MergeGraph(ctx context.Context, components []string, edges []domain.Edge) error
	// Edges lists every DEPENDS_ON relationship. Order is store-defined.
	Edges(ctx context.Context) ([]domain.Edge, error)
	// Downstream returns the names reachable from name over one or more outgoing DEPENDS_ON
	// hops. An unknown name yields an empty result.
	Downstream(ctx context.Context, name string) ([]string, error)
	// Ping performs a trivial round trip and reports whether the answer was the expected one.
	Ping(ctx context.Context) (bool, error)
}
