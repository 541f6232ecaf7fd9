package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/platform/neo4jdb"
)

func TestClassifyConnectivityErrors(t *testing.T) {
	refused := &neo4j.ConnectivityError{Inner: errors.New("dial tcp 127.0.0.1:7687: connect: connection refused")}

	cases := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"connectivity", refused, true},
		{"retries exhausted", &neo4j.TransactionExecutionLimit{Cause: "timeout", Errors: []error{refused}}, true},
		{"query rejected", errors.New("Neo.ClientError.Statement.SyntaxError"), false},
		{"retries exhausted on query errors", &neo4j.TransactionExecutionLimit{Cause: "timeout", Errors: []error{errors.New("deadlock")}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify("edges", tc.err)
			assert.Equal(t, tc.unavailable, errors.Is(err, ErrStoreUnavailable))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestNeo4jStoreWithoutDriverIsUnavailable(t *testing.T) {
	store := NewNeo4jStore(&neo4jdb.Client{}, logger.Nop())
	ctx := context.Background()

	_, err := store.Edges(ctx)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Downstream(ctx, "API")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = store.Ping(ctx)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, store.MergeGraph(ctx, []string{"API"}, nil), ErrStoreUnavailable)
}
