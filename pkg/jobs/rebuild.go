package jobs

import (
	"context"

	"github.com/ritzau/syncup/pkg/engine"
)

// KindRebuild labels full engine rebuilds
const KindRebuild = "rebuild"

// RebuildTask reloads the engine from its providers in the background
func RebuildTask(e *engine.Engine) Task {
	return func(ctx context.Context, report Reporter) (any, error) {
		report(0, "Rebuilding graphs")
		if err := e.RebuildAll(ctx); err != nil {
			return nil, err
		}
		stats := e.Stats()
		report(1, "Rebuild complete")
		return stats, nil
	}
}
