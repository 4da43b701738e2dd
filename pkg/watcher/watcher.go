// Package watcher reloads the engine when the data files change on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/syncup/pkg/catalog"
	"github.com/ritzau/syncup/pkg/logging"
	"github.com/ritzau/syncup/pkg/metrics"
)

// ChangeType identifies which data file changed
type ChangeType int

const (
	ChangeTypeTracks ChangeType = iota
	ChangeTypeUsers
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeTracks:
		return "tracks"
	case ChangeTypeUsers:
		return "users"
	}
	return fmt.Sprintf("ChangeType(%d)", int(c))
}

// ChangeEvent is a batch of changes to one kind of data file
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups the burst of events a single save produces
const batchWindow = 100 * time.Millisecond

// FileWatcher watches the data directory for tracks.json and users.json
// writes. The directory is watched rather than the files so that editors
// replacing a file by rename are still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	dataDir string
	events  chan ChangeEvent
}

func NewFileWatcher(dataDir string) (*FileWatcher, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dataDir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &FileWatcher{
		watcher: w,
		dataDir: dataDir,
		events:  make(chan ChangeEvent, 16),
	}, nil
}

// Start begins watching. Events stops, and its channel closes, when ctx is
// cancelled.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dataDir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.dataDir, err)
	}
	logging.Info("watching data directory", "path", fw.dataDir)

	go fw.processEvents(ctx)
	return nil
}

// classify maps a path to the data file it belongs to
func classify(path string) (ChangeType, bool) {
	switch filepath.Base(path) {
	case catalog.TracksFile:
		return ChangeTypeTracks, true
	case catalog.UsersFile:
		return ChangeTypeUsers, true
	}
	return 0, false
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	pending := make(map[ChangeType][]string)
	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, ct := range []ChangeType{ChangeTypeTracks, ChangeTypeUsers} {
			paths := pending[ct]
			if len(paths) == 0 {
				continue
			}
			metrics.DataChanges.WithLabelValues(ct.String()).Inc()
			select {
			case fw.events <- ChangeEvent{Type: ct, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		pending = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			ct, relevant := classify(event.Name)
			if !relevant {
				continue
			}
			logging.Trace("data file event", "path", event.Name, "op", event.Op.String())
			pending[ct] = append(pending[ct], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of batched change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
