package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

type flappingGraph struct {
	services.GraphService
	calls  atomic.Int32
	states []string
}

func (f *flappingGraph) StoreHealth(context.Context) string {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.states) {
		return f.states[len(f.states)-1]
	}
	return f.states[n]
}

func TestWatchStoreLogsTransitions(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	graph := &flappingGraph{states: []string{services.StoreOK, services.StoreOK, services.StoreBad, services.StoreBad, services.StoreOK}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchStore(ctx, log, graph, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return graph.calls.Load() >= 6 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"graph store reachable",
		"graph store unreachable",
		"graph store reachable again",
	}, msgs)
}

func TestWatchStoreDisabled(t *testing.T) {
	graph := &flappingGraph{states: []string{services.StoreOK}}
	assert.NoError(t, watchStore(context.Background(), logger.Nop(), graph, 0))
	assert.Zero(t, graph.calls.Load())
}
