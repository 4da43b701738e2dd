package watcher

import (
	"context"
	"errors"

	"github.com/ritzau/syncup/pkg/logging"
)

// ChangeAnalysis describes which parts of the engine must be rebuilt
type ChangeAnalysis struct {
	NeedCatalog  bool
	NeedSocial   bool
	ChangedFiles []string
}

// AnalyzeChanges maps a change event to the rebuild it requires. A tracks
// change rebuilds the similarity graph and title index; a users change
// rebuilds the social and follow graphs.
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{ChangedFiles: event.Paths}
	switch event.Type {
	case ChangeTypeTracks:
		analysis.NeedCatalog = true
	case ChangeTypeUsers:
		analysis.NeedSocial = true
	}
	return analysis
}

// Rebuilder is the part of the engine the watcher drives
type Rebuilder interface {
	BuildCatalog(ctx context.Context) error
	BuildSocial(ctx context.Context) error
}

// Apply runs the rebuilds an analysis asks for. Both are attempted even
// if the first fails.
func Apply(ctx context.Context, r Rebuilder, analysis *ChangeAnalysis) error {
	var errs []error
	if analysis.NeedCatalog {
		logging.Info("reloading catalog", "files", analysis.ChangedFiles)
		if err := r.BuildCatalog(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if analysis.NeedSocial {
		logging.Info("reloading users", "files", analysis.ChangedFiles)
		if err := r.BuildSocial(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run feeds debounced events from the watcher into r until ctx ends or
// the event channel closes. Failed reloads are logged and the previous
// graphs stay in place.
func Run(ctx context.Context, events <-chan ChangeEvent, r Rebuilder) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := Apply(ctx, r, AnalyzeChanges(event)); err != nil {
				logging.Error("reload failed", "type", event.Type.String(), "error", err)
			}
		}
	}
}
