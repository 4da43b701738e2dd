package watcher

import (
	"context"
	"time"

	"github.com/ritzau/syncup/pkg/logging"
)

// Debouncer merges bursts of change events so a bulk copy of both data
// files triggers one reload. It flushes after quietPeriod without events,
// or maxWait after the first event of a burst, whichever comes first.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	flush := func() {
		quiet, deadline = nil, nil
		if eventCount == 0 {
			return
		}
		logging.Debug("flushing accumulated data changes", "count", eventCount)

		// Tracks first: the catalog rebuild is the expensive one
		for _, ct := range []ChangeType{ChangeTypeTracks, ChangeTypeUsers} {
			if paths := accumulated[ct]; len(paths) > 0 {
				d.output <- ChangeEvent{Type: ct, Paths: paths, Timestamp: time.Now()}
			}
		}
		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
