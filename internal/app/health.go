package app

import (
	"context"
	"time"

	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

// watchStore polls store reachability until ctx ends. It logs once per transition so an outage
// shows up in the logs even when no requests arrive.
func watchStore(ctx context.Context, log *logger.Logger, graph services.GraphService, every time.Duration) error {
	if every <= 0 || graph == nil {
		return nil
	}
	log = log.With("component", "StoreWatch")

	last := ""
	check := func() {
		cctx, cancel := context.WithTimeout(ctx, every)
		defer cancel()
		state := graph.StoreHealth(cctx)
		if state == last {
			return
		}
		switch {
		case state != services.StoreOK:
			log.Warn("graph store unreachable", "store", state)
		case last != "":
			log.Info("graph store reachable again", "store", state)
		default:
			log.Info("graph store reachable", "store", state)
		}
		last = state
	}

	check()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			check()
		}
	}
}
