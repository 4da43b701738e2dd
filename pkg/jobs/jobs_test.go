package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ritzau/syncup/pkg/catalog"
	"github.com/ritzau/syncup/pkg/engine"
	"github.com/ritzau/syncup/pkg/model"
	"github.com/ritzau/syncup/pkg/pubsub"
)

func sampleCatalog() []model.Track {
	return []model.Track{
		{ID: "1", Title: "Halo", Artist: "Beyoncé", Genre: model.GenrePop, Year: 2008},
		{ID: "2", Title: "So What", Artist: "Miles Davis", Genre: model.GenreJazz, Year: 1959},
		{ID: "3", Title: "Despacito", Artist: "Luis Fonsi", Genre: model.GenreReggaeton, Year: 2017},
		{ID: "4", Title: "Crazy in Love", Artist: "Beyonce feat. Jay-Z", Genre: model.GenreRnB, Year: 2003},
	}
}

func ids(tracks []model.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func runSearch(t *testing.T, c Criteria) SearchResult {
	t.Helper()
	res, err := SearchTask(sampleCatalog(), c)(context.Background(), func(float64, string) {})
	if err != nil {
		t.Fatalf("SearchTask: %v", err)
	}
	return res.(SearchResult)
}

func TestSearchTask_Criteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"artist ignores accents", Criteria{Artist: "beyonce", MatchAll: true}, []string{"1", "4"}},
		{"accented query", Criteria{Artist: "BEYONCÉ", MatchAll: true}, []string{"1", "4"}},
		{"genre", Criteria{Genre: "jazz", MatchAll: true}, []string{"2"}},
		{"year range", Criteria{YearFrom: 2000, YearTo: 2010, MatchAll: true}, []string{"1", "4"}},
		{"year from only", Criteria{YearFrom: 2010, MatchAll: true}, []string{"3"}},
		{"year to only", Criteria{YearTo: 1960, MatchAll: true}, []string{"2"}},
		{"and", Criteria{Artist: "beyonce", Genre: model.GenrePop, MatchAll: true}, []string{"1"}},
		{"or", Criteria{Artist: "fonsi", Genre: model.GenreJazz}, []string{"2", "3"}},
		{"no match", Criteria{Artist: "nobody", MatchAll: true}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runSearch(t, tt.criteria)
			got := ids(res.Tracks)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
					break
				}
			}
			if res.Total != 4 {
				t.Errorf("Expected 4 scanned tracks, got %d", res.Total)
			}
		})
	}
}

func TestSearchTask_EmptyGenreIsNoFilter(t *testing.T) {
	var c Criteria
	if err := json.Unmarshal([]byte(`{"artist":"fonsi","genre":"","matchAll":true}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Genre != "" {
		t.Fatalf("Empty genre should stay empty, got %q", c.Genre)
	}
	if got := ids(runSearch(t, c).Tracks); len(got) != 1 || got[0] != "3" {
		t.Errorf("Expected [3], got %v", got)
	}
}

func TestSearchTask_NoCriteria(t *testing.T) {
	c := Criteria{MatchAll: true}
	if !c.Empty() {
		t.Error("Criteria without filters should be empty")
	}
	if res := runSearch(t, c); len(res.Tracks) != 0 {
		t.Errorf("No criteria should match nothing, got %v", ids(res.Tracks))
	}
}

func TestSearchTask_ReportsProgress(t *testing.T) {
	var progress []float64
	_, err := SearchTask(sampleCatalog(), Criteria{Genre: model.GenrePop})(context.Background(), func(p float64, _ string) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("SearchTask: %v", err)
	}
	if len(progress) < 4 || progress[len(progress)-1] != 1 {
		t.Errorf("Expected per-track progress ending at 1, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("Progress went backwards: %v", progress)
		}
	}
}

func TestSearchTask_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := SearchTask(sampleCatalog(), Criteria{Genre: model.GenrePop})(ctx, func(float64, string) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Errorf("A cancelled search must not return partial results, got %v", res)
	}
}

func TestManager_Finishes(t *testing.T) {
	m := NewManager(nil)
	job := m.Start(context.Background(), KindSearch, SearchTask(sampleCatalog(), Criteria{Genre: model.GenreJazz}))
	if job.Status != StatusPending {
		t.Errorf("New job should be pending, got %s", job.Status)
	}
	m.Wait()

	got, ok := m.Get(job.ID)
	if !ok {
		t.Fatal("Job should be known")
	}
	if got.Status != StatusFinished || got.Progress != 1 {
		t.Errorf("Expected finished at progress 1, got %s at %v", got.Status, got.Progress)
	}
	res, ok := got.Result.(SearchResult)
	if !ok || len(res.Tracks) != 1 {
		t.Errorf("Unexpected result %#v", got.Result)
	}
	if m.Cancel(job.ID) {
		t.Error("Finished jobs cannot be cancelled")
	}
}

func TestManager_Cancel(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	job := m.Start(context.Background(), "blocking", func(ctx context.Context, report Reporter) (any, error) {
		report(0.5, "halfway")
		close(started)
		<-ctx.Done()
		return "partial", ctx.Err()
	})

	<-started
	if !m.Cancel(job.ID) {
		t.Fatal("Running job should be cancellable")
	}
	m.Wait()

	got, _ := m.Get(job.ID)
	if got.Status != StatusCancelled {
		t.Errorf("Expected cancelled, got %s", got.Status)
	}
	if got.Result != nil {
		t.Errorf("Cancelled job must not carry a result, got %v", got.Result)
	}
	if m.Cancel("unknown") {
		t.Error("Unknown jobs cannot be cancelled")
	}
}

func TestManager_Error(t *testing.T) {
	m := NewManager(nil)
	job := m.Start(context.Background(), "failing", func(context.Context, Reporter) (any, error) {
		return nil, errors.New("boom")
	})
	m.Wait()

	got, _ := m.Get(job.ID)
	if got.Status != StatusError || got.Error != "boom" {
		t.Errorf("Expected error status with message, got %s %q", got.Status, got.Error)
	}

	if !m.Forget(job.ID) {
		t.Error("Finished job should be forgettable")
	}
	if _, ok := m.Get(job.ID); ok {
		t.Error("Forgotten job should be gone")
	}
}

func TestManager_PublishesProgress(t *testing.T) {
	pub := pubsub.NewSSEPublisher()
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, pubsub.TopicJobs)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	m := NewManager(pub)
	m.Start(context.Background(), KindSearch, SearchTask(sampleCatalog(), Criteria{Genre: model.GenreJazz}))
	m.Wait()

	var types []string
	for {
		select {
		case event := <-sub.Events():
			types = append(types, event.Type)
			if event.Type == string(StatusFinished) {
				if len(types) < 3 {
					t.Errorf("Expected pending, running and progress events before finishing, got %v", types)
				}
				return
			}
		case <-ctx.Done():
			t.Fatalf("Timeout waiting for finished event, saw %v", types)
		}
	}
}

func TestManager_ShutdownCancelsRunning(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	job := m.Start(context.Background(), "blocking", func(ctx context.Context, _ Reporter) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started
	m.Shutdown()

	if got, _ := m.Get(job.ID); got.Status != StatusCancelled {
		t.Errorf("Expected cancelled after shutdown, got %s", got.Status)
	}
}

// blockingTracks holds ListAll until the context is done once armed
type blockingTracks struct {
	tracks  []*model.Track
	armed   bool
	entered chan struct{}
}

func (p *blockingTracks) ListAll(ctx context.Context) ([]*model.Track, error) {
	if !p.armed {
		return p.tracks, nil
	}
	close(p.entered)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRebuildTask_CancelKeepsEngine(t *testing.T) {
	provider := &blockingTracks{
		tracks:  []*model.Track{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
		entered: make(chan struct{}),
	}
	e, err := engine.New(engine.DefaultOptions(), provider,
		&catalog.MemoryUserProvider{Users: []*model.User{{Username: "ana"}}}, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if err := e.BuildAll(context.Background()); err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	before := e.Stats()
	provider.armed = true

	m := NewManager(nil)
	job := m.Start(context.Background(), KindRebuild, RebuildTask(e))
	<-provider.entered
	if !m.Cancel(job.ID) {
		t.Fatal("Running rebuild should be cancellable")
	}
	m.Wait()

	got, _ := m.Get(job.ID)
	if got.Status != StatusCancelled || got.Result != nil {
		t.Errorf("Expected cancelled without result, got %s %v", got.Status, got.Result)
	}
	if after := e.Stats(); after != before {
		t.Errorf("Cancelled rebuild changed the engine: before %+v, after %+v", before, after)
	}
	if _, ok := e.Track("a"); !ok {
		t.Error("Tracks should still be served after a cancelled rebuild")
	}
}

func TestRebuildTask(t *testing.T) {
	e, err := engine.New(engine.DefaultOptions(),
		&catalog.MemoryTrackProvider{Tracks: []*model.Track{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}},
		&catalog.MemoryUserProvider{},
		nil,
	)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	m := NewManager(nil)
	job := m.Start(context.Background(), KindRebuild, RebuildTask(e))
	m.Wait()

	got, _ := m.Get(job.ID)
	if got.Status != StatusFinished {
		t.Fatalf("Expected finished, got %s (%s)", got.Status, got.Error)
	}
	if stats, ok := got.Result.(engine.Stats); !ok || stats.Tracks != 2 {
		t.Errorf("Unexpected rebuild result %#v", got.Result)
	}
}
