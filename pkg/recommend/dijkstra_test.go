package recommend

import (
	"math"
	"testing"

	"github.com/ritzau/syncup/pkg/graph"
	"github.com/ritzau/syncup/pkg/model"
)

func newTrack(id string) *model.Track {
	return &model.Track{ID: id, Title: id}
}

// buildGraph links tracks by "a-b" keys with the given weights
func buildGraph(t *testing.T, links map[[2]string]float64) (*graph.SimilarityGraph, map[string]*model.Track) {
	t.Helper()
	g := graph.NewSimilarityGraph()
	tracks := make(map[string]*model.Track)
	get := func(id string) *model.Track {
		if tr, ok := tracks[id]; ok {
			return tr
		}
		tracks[id] = newTrack(id)
		return tracks[id]
	}
	for pair, w := range links {
		if err := g.AddEdge(get(pair[0]), get(pair[1]), w); err != nil {
			t.Fatalf("AddEdge(%v): %v", pair, err)
		}
	}
	return g, tracks
}

func ids(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Track.ID
	}
	return out
}

func TestFrom_RanksByAccumulatedSimilarity(t *testing.T) {
	g, tr := buildGraph(t, map[[2]string]float64{
		{"S", "A"}: 0.9,
		{"S", "B"}: 0.5,
		{"A", "C"}: 0.8,
		{"B", "C"}: 0.9,
	})

	recs := From(g, tr["S"], 10)
	got := ids(recs)
	want := []string{"A", "C", "B"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	// C is reached through A (distance 0.3 beats 0.6 through B)
	if math.Abs(recs[1].Similarity-0.72) > 1e-9 {
		t.Errorf("Accumulated similarity of C = %v, want 0.72", recs[1].Similarity)
	}
	if recs[1].Hops != 2 {
		t.Errorf("C should be 2 hops away, got %d", recs[1].Hops)
	}
}

func TestFrom_FollowsDistanceTreeNotMaxProduct(t *testing.T) {
	// S-T directly: distance 0.7, product 0.3
	// S-M-T: distance 0.8, product 0.36
	g, tr := buildGraph(t, map[[2]string]float64{
		{"S", "T"}: 0.3,
		{"S", "M"}: 0.6,
		{"M", "T"}: 0.6,
	})

	for _, r := range From(g, tr["S"], 10) {
		if r.Track.ID == "T" && math.Abs(r.Similarity-0.3) > 1e-9 {
			t.Errorf("T similarity = %v, want 0.3 (relaxation tree value)", r.Similarity)
		}
	}

	path := PathBetween(g, tr["S"], tr["T"])
	if len(path) != 2 || path[0].ID != "S" || path[1].ID != "T" {
		t.Errorf("Expected direct path [S T], got %v", path)
	}
}

func TestFrom_ExcludesSeedAndUnreachable(t *testing.T) {
	g, tr := buildGraph(t, map[[2]string]float64{
		{"S", "A"}: 0.5,
	})
	island := newTrack("Z")
	g.AddVertex(island)

	recs := From(g, tr["S"], 10)
	if len(recs) != 1 || recs[0].Track.ID != "A" {
		t.Errorf("Expected only A, got %v", ids(recs))
	}
}

func TestFrom_Limit(t *testing.T) {
	g, tr := buildGraph(t, map[[2]string]float64{
		{"S", "A"}: 0.9,
		{"S", "B"}: 0.8,
		{"S", "C"}: 0.7,
	})

	if got := From(g, tr["S"], 2); len(got) != 2 {
		t.Errorf("Expected 2 results, got %d", len(got))
	}
	if got := From(g, tr["S"], 0); len(got) != 0 {
		t.Errorf("Expected no results for limit 0, got %d", len(got))
	}
	if got := From(g, newTrack("missing"), 5); len(got) != 0 {
		t.Errorf("Expected no results for unknown seed, got %d", len(got))
	}
}

func TestPathBetween(t *testing.T) {
	g, tr := buildGraph(t, map[[2]string]float64{
		{"A", "B"}: 0.9,
		{"B", "C"}: 0.9,
		{"A", "C"}: 0.1,
	})
	g.AddVertex(newTrack("Z"))

	path := PathBetween(g, tr["A"], tr["C"])
	want := []string{"A", "B", "C"}
	if len(path) != len(want) {
		t.Fatalf("Expected path %v, got %d tracks", want, len(path))
	}
	for i, p := range path {
		if p.ID != want[i] {
			t.Errorf("Step %d: expected %s, got %s", i, want[i], p.ID)
		}
	}

	if got := PathBetween(g, tr["A"], tr["A"]); len(got) != 1 {
		t.Errorf("Path to self should have one element, got %d", len(got))
	}
	z, _ := g.Vertex("Z")
	if got := PathBetween(g, tr["A"], z); len(got) != 0 {
		t.Errorf("Unreachable target should give empty path, got %d", len(got))
	}
	if got := PathBetween(g, tr["A"], newTrack("missing")); len(got) != 0 {
		t.Errorf("Absent target should give empty path, got %d", len(got))
	}
}
